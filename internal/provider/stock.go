package provider

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/fetch"
)

// Stock formats Alpha Vantage intraday quotes.
type Stock struct {
	ep  Endpoint
	log *zap.SugaredLogger
}

func (s *Stock) Kind() Kind { return KindStock }

func (s *Stock) Endpoint() Endpoint { return s.ep }

func (s *Stock) URL() string {
	base := trimBase(s.ep.BaseURL, DefaultStockBaseURL)
	return fmt.Sprintf("%s/query?function=TIME_SERIES_INTRADAY&symbol=%s&interval=%dmin&apikey=%s",
		base, url.QueryEscape(s.ep.Query), s.ep.BarMinutes, url.QueryEscape(s.ep.APIKey))
}

// SeriesKey is the payload key holding the intraday bars.
func (s *Stock) SeriesKey() string {
	return fmt.Sprintf("Time Series (%dmin)", s.ep.BarMinutes)
}

func (s *Stock) Format(payload fetch.Payload) error {
	if msg, ok := payload["Error Message"]; ok {
		return s.notice("API Error", msg, payload)
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := payload[key]; ok {
			return s.notice("API Limit", msg, payload)
		}
	}

	meta, ok := asObject(payload["Meta Data"])
	if !ok {
		s.log.Errorf("Invalid API response: missing key %q (keys: %v) payload %s", "Meta Data", sortedKeys(payload), raw(payload))
		return fmt.Errorf("%w: missing key %q", ErrInvalidPayload, "Meta Data")
	}

	s.log.Infof("Stock: %s", field(meta, "2. Symbol"))
	s.log.Infof("Time: %s", field(meta, "3. Last Refreshed"))

	series, ok := asObject(payload[s.SeriesKey()])
	if !ok || len(series) == 0 {
		s.log.Errorf("Time series data not found: missing key %q. Available keys: %v payload %s",
			s.SeriesKey(), sortedKeys(payload), raw(payload))
		return fmt.Errorf("%w: missing key %q", ErrInvalidPayload, s.SeriesKey())
	}

	// Bar timestamps are "YYYY-MM-DD HH:MM:SS", so the greatest key is the latest.
	keys := sortedKeys(series)
	bar := series[keys[len(keys)-1]]

	s.log.Infof("Open: %s", field(bar, "1. open"))
	s.log.Infof("High: %s", field(bar, "2. high"))
	s.log.Infof("Low: %s", field(bar, "3. low"))
	s.log.Infof("Close: %s", field(bar, "4. close"))
	s.log.Infof("Volume: %s", field(bar, "5. volume"))

	s.log.Infof("API URL: %s", RedactURL(s.URL()))
	s.log.Infof("Interval: %d", s.ep.Interval)
	s.log.Infof("Log file: %s", s.ep.LogFile)
	return nil
}

func (s *Stock) notice(prefix string, msg any, payload fetch.Payload) error {
	s.log.Errorf("%s: %s", prefix, text(msg))
	s.log.Debugf("Full API response: %s", raw(payload))
	return fmt.Errorf("%w: %s: %s", ErrProviderNotice, prefix, text(msg))
}
