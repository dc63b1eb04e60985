package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_Validate(t *testing.T) {
	valid := Endpoint{Kind: KindWeather, Query: "Chennai", Interval: 10, LogFile: "w.log", APIKey: "k"}

	tests := []struct {
		name    string
		mutate  func(*Endpoint)
		wantErr string
	}{
		{"valid weather", func(*Endpoint) {}, ""},
		{"missing location", func(e *Endpoint) { e.Query = "" }, "location is required"},
		{"missing symbol", func(e *Endpoint) { e.Kind = KindStock; e.BarMinutes = 5; e.Query = "" }, "stock is required"},
		{"zero interval", func(e *Endpoint) { e.Interval = 0 }, "interval must be a positive number of seconds (got 0)"},
		{"negative interval", func(e *Endpoint) { e.Interval = -3 }, "interval must be a positive number of seconds"},
		{"missing log file", func(e *Endpoint) { e.LogFile = "" }, "log file is required"},
		{"missing key", func(e *Endpoint) { e.APIKey = "" }, "OPENWEATHERMAP_API_KEY is not set"},
		{"bad base url", func(e *Endpoint) { e.BaseURL = "not a url" }, "is not a valid URL"},
		{"bad bar", func(e *Endpoint) { e.Kind = KindStock; e.BarMinutes = 10 }, "bar interval must be one of"},
		{"good bar", func(e *Endpoint) { e.Kind = KindStock; e.BarMinutes = 60 }, ""},
		{"unknown kind", func(e *Endpoint) { e.Kind = Kind(9) }, "unknown provider kind 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := valid
			tt.mutate(&ep)
			err := ep.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEndpoint))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_DefaultsBarAndRejectsInvalid(t *testing.T) {
	p, err := New(Endpoint{Kind: KindStock, Query: " MSFT ", Interval: 5, LogFile: "s.log", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBarMinutes, p.Endpoint().BarMinutes)
	assert.Equal(t, "MSFT", p.Endpoint().Query)

	_, err = New(Endpoint{Kind: KindStock, Interval: 5, LogFile: "s.log"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock is required")
	assert.Contains(t, err.Error(), "ALPHAVANTAGE_API_KEY is not set")
}

func TestNew_BaseURLOverride(t *testing.T) {
	p, err := New(Endpoint{Kind: KindWeather, Query: "New York", Interval: 5, LogFile: "w.log", APIKey: "k", BaseURL: "http://127.0.0.1:8080/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/data/2.5/weather?q=New+York&appid=k", p.URL())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Weather")
	require.NoError(t, err)
	assert.Equal(t, KindWeather, k)

	k, err = ParseKind(" stock ")
	require.NoError(t, err)
	assert.Equal(t, KindStock, k)

	_, err = ParseKind("crypto")
	assert.Error(t, err)
}

func TestKind_Names(t *testing.T) {
	assert.Equal(t, "weather_api_watchdog.log", KindWeather.DefaultLogFile())
	assert.Equal(t, "stock_api_watchdog.log", KindStock.DefaultLogFile())
	assert.Equal(t, "location", KindWeather.QueryName())
	assert.Equal(t, "stock", KindStock.QueryName())
	assert.Equal(t, "Stock", KindStock.Title())
}
