package provider

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/fetch"
)

// Required top-level keys of an OpenWeatherMap current-weather response.
var weatherKeys = []string{"name", "dt", "sys", "weather", "wind", "main", "visibility", "clouds"}

// Weather formats OpenWeatherMap current conditions.
type Weather struct {
	ep  Endpoint
	log *zap.SugaredLogger
}

func (w *Weather) Kind() Kind { return KindWeather }

func (w *Weather) Endpoint() Endpoint { return w.ep }

func (w *Weather) URL() string {
	base := trimBase(w.ep.BaseURL, DefaultWeatherBaseURL)
	return fmt.Sprintf("%s/data/2.5/weather?q=%s&appid=%s",
		base, url.QueryEscape(w.ep.Query), url.QueryEscape(w.ep.APIKey))
}

func (w *Weather) Format(payload fetch.Payload) error {
	if code, ok := payload["cod"]; ok && text(code) != "200" {
		msg := field(payload, "message")
		w.log.Errorf("API Error: %s (code %s)", msg, text(code))
		w.log.Debugf("Full API response: %s", raw(payload))
		return fmt.Errorf("%w: %s", ErrProviderNotice, msg)
	}
	for _, key := range weatherKeys {
		if _, ok := payload[key]; !ok {
			w.log.Errorf("Invalid API response: missing key %q in payload %s", key, raw(payload))
			return fmt.Errorf("%w: missing key %q", ErrInvalidPayload, key)
		}
	}

	w.log.Infof("Location: %s", field(payload, "name"))
	w.log.Infof("Time: %s", unixTime(payload, "dt"))
	w.log.Infof("Country: %s", field(payload, "sys", "country"))
	w.log.Infof("Weather: %s", field(payload, "weather", 0, "description"))

	attributes := []struct {
		name  string
		value string
	}{
		{"Wind speeds", withUnit(payload, " m/s", "wind", "speed")},
		{"Wind direction", withUnit(payload, "°", "wind", "deg")},
		{"Temperature", celsius(payload, "main", "temp")},
		{"Humidity", withUnit(payload, "%", "main", "humidity")},
		{"Pressure", withUnit(payload, " hPa", "main", "pressure")},
		{"Visibility", withUnit(payload, " m", "visibility")},
		{"Sunrise", unixTime(payload, "sys", "sunrise")},
		{"Sunset", unixTime(payload, "sys", "sunset")},
		{"Clouds", withUnit(payload, "%", "clouds", "all")},
	}
	for _, a := range attributes {
		w.log.Infof("%s: %s", a.name, a.value)
	}

	w.log.Infof("API URL: %s", RedactURL(w.URL()))
	w.log.Infof("Interval: %d", w.ep.Interval)
	w.log.Infof("Log file: %s", w.ep.LogFile)
	return nil
}

func withUnit(v any, unit string, path ...any) string {
	val, ok := lookup(v, path...)
	if !ok {
		return notAvailable
	}
	return text(val) + unit
}
