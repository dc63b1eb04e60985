package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org"
	DefaultStockBaseURL   = "https://www.alphavantage.co"
	DefaultBarMinutes     = 5
)

// ErrInvalidEndpoint wraps every endpoint validation failure.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint is the immutable description of what to poll.
type Endpoint struct {
	Kind Kind
	// Query is the weather location or the stock symbol.
	Query string `validate:"required"`
	// Interval between polls, in seconds.
	Interval int `validate:"gt=0"`
	// BarMinutes is the intraday bar size for stock quotes.
	BarMinutes int
	LogFile    string `validate:"required"`
	BaseURL    string `validate:"omitempty,url"`
	APIKey     string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects endpoints that must never reach the poll loop.
func (e Endpoint) Validate() error {
	var problems []string
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
		}
		for _, fe := range verrs {
			problems = append(problems, e.describe(fe))
		}
	}
	if e.Kind == KindStock {
		if err := validate.Var(e.BarMinutes, "oneof=1 5 15 30 60"); err != nil {
			problems = append(problems, fmt.Sprintf("bar interval must be one of 1, 5, 15, 30, 60 minutes (got %d)", e.BarMinutes))
		}
	}
	if e.Kind != KindWeather && e.Kind != KindStock {
		problems = append(problems, fmt.Sprintf("unknown provider kind %d", int(e.Kind)))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, strings.Join(problems, "; "))
	}
	return nil
}

func (e Endpoint) describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Query":
		return e.Kind.QueryName() + " is required"
	case "Interval":
		return fmt.Sprintf("interval must be a positive number of seconds (got %v)", fe.Value())
	case "LogFile":
		return "log file is required"
	case "APIKey":
		return e.Kind.APIKeyEnv() + " is not set"
	case "BaseURL":
		return fmt.Sprintf("base url %q is not a valid URL", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func (e Endpoint) withDefaults() Endpoint {
	e.Query = strings.TrimSpace(e.Query)
	e.LogFile = strings.TrimSpace(e.LogFile)
	e.APIKey = strings.TrimSpace(e.APIKey)
	if e.Kind == KindStock && e.BarMinutes == 0 {
		e.BarMinutes = DefaultBarMinutes
	}
	return e
}
