package provider

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/fetch"
)

var (
	// ErrInvalidPayload marks a response missing a key the formatter needs.
	ErrInvalidPayload = errors.New("invalid API response")
	// ErrProviderNotice marks a provider-reported soft failure such as a rate
	// limit or an unknown symbol.
	ErrProviderNotice = errors.New("provider notice")
)

// Provider is the per-kind URL builder and formatter.
type Provider interface {
	Kind() Kind
	Endpoint() Endpoint
	// URL returns the request URL, including the API key.
	URL() string
	// Format writes the status lines for payload to the provider's logger.
	// Rejected payloads are logged and reported with ErrInvalidPayload or
	// ErrProviderNotice.
	Format(payload fetch.Payload) error
}

// New validates ep and returns the provider for its kind. Formatted lines are
// written to log.
func New(ep Endpoint, log *zap.SugaredLogger) (Provider, error) {
	ep = ep.withDefaults()
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch ep.Kind {
	case KindWeather:
		return &Weather{ep: ep, log: log}, nil
	case KindStock:
		return &Stock{ep: ep, log: log}, nil
	default:
		return nil, fmt.Errorf("unsupported provider kind %d", ep.Kind)
	}
}

// RedactURL hides API key query values so URLs can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, key := range []string{"appid", "apikey"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func trimBase(base, fallback string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return fallback
	}
	return base
}
