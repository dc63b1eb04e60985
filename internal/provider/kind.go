package provider

import (
	"fmt"
	"strings"
)

// Kind selects the upstream API.
type Kind int

const (
	KindWeather Kind = iota
	KindStock
)

// Kinds lists every provider in display order.
var Kinds = []Kind{KindWeather, KindStock}

func (k Kind) String() string {
	switch k {
	case KindWeather:
		return "weather"
	case KindStock:
		return "stock"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title is the label shown in the form.
func (k Kind) Title() string {
	switch k {
	case KindWeather:
		return "Weather"
	case KindStock:
		return "Stock"
	default:
		return k.String()
	}
}

// QueryName names the query argument: a location or a stock symbol.
func (k Kind) QueryName() string {
	if k == KindStock {
		return "stock"
	}
	return "location"
}

// DefaultLogFile is the log path used by the CLI when --log-file is omitted.
func (k Kind) DefaultLogFile() string {
	return k.String() + "_api_watchdog.log"
}

// APIKeyEnv names the environment variable holding the provider's key.
func (k Kind) APIKeyEnv() string {
	if k == KindStock {
		return "ALPHAVANTAGE_API_KEY"
	}
	return "OPENWEATHERMAP_API_KEY"
}

// ParseKind accepts "weather" or "stock" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weather":
		return KindWeather, nil
	case "stock":
		return KindStock, nil
	default:
		return 0, fmt.Errorf("unknown provider %q", s)
	}
}
