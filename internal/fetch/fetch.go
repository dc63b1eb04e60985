package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/metrics"
)

// Payload is a decoded JSON object. Numbers are kept as json.Number so they
// render exactly as the provider sent them.
type Payload map[string]any

// Fetcher retrieves and decodes one JSON document.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Payload, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	DefaultMaxRetries = 5
	DefaultDelay      = 5 * time.Second
	DefaultTimeout    = 10 * time.Second

	defaultUserAgent = "apiwatchdog/0.1"
	maxErrorBody     = 512
)

// StatusError is returned for responses with status >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a response body that is not a JSON object. It is never
// retried.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// Options configure a Client. Zero values use the defaults.
type Options struct {
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
	Metrics    *metrics.Metrics
	// Label names the provider in metrics.
	Label string
	// OnRetry is called before each inter-attempt wait.
	OnRetry func(err error, wait time.Duration)
}

// Client issues GET requests with a fixed number of attempts and a constant
// delay between them.
type Client struct {
	http       *http.Client
	maxRetries int
	delay      time.Duration
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
	label      string
	onRetry    func(err error, wait time.Duration)
	userAgent  string
}

// New builds a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		http:       opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		delay:      opts.Delay,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		label:      opts.Label,
		onRetry:    opts.OnRetry,
		userAgent:  defaultUserAgent,
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c
}

// MaxRetries reports the number of attempts made before giving up.
func (c *Client) MaxRetries() int { return c.maxRetries }

// Fetch GETs rawURL and decodes the body. Transport errors and error statuses
// are retried up to MaxRetries attempts in total, waiting the configured delay
// between attempts; the last error is returned once attempts are exhausted.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Payload, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	attempt := 0
	operation := func() (Payload, error) {
		attempt++
		payload, err := c.get(ctx, rawURL)
		if err == nil {
			c.metrics.Attempt(c.label, false)
			return payload, nil
		}
		c.metrics.Attempt(c.label, true)

		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, backoff.Permanent(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		c.log.Errorf("[Attempt %d/%d] Error fetching API data: %v", attempt, c.maxRetries, err)
		return nil, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.maxRetries-1)),
		ctx,
	)
	return backoff.RetryNotifyWithData(operation, policy, c.onRetry)
}

func (c *Client) get(ctx context.Context, rawURL string) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		snippet := string(bytes.TrimSpace(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return decode(body)
}

func decode(body []byte) (Payload, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload Payload
	if err := decoder.Decode(&payload); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if payload == nil {
		return nil, &DecodeError{Err: errors.New("response is not a JSON object")}
	}
	return payload, nil
}
