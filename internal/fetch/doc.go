// Package fetch issues the HTTP GET behind every poll cycle.
//
// # Overview
//
// A Client retrieves one JSON document per Fetch call and decodes it into a
// Payload. It keeps no state between calls: nothing is cached, and a failed
// call never returns stale data.
//
// # Request Shape
//
// Every attempt is a GET with:
//
//   - Accept: application/json
//   - User-Agent: apiwatchdog/<version>
//   - a per-attempt timeout (DefaultTimeout, 10s)
//
// The URL is passed through unchanged. Providers build it, including the API
// key, and redact the key themselves before logging it.
//
// # Retry Policy
//
// MaxRetries is the total number of attempts, not the number of retries
// after the first. With the defaults (5 attempts, 5s delay) a dead upstream
// costs at most four waits before Fetch gives up.
//
//	attempt 1 ──fail──> wait Delay ──> attempt 2 ──fail──> ... ──> attempt N ──fail──> error
//	    │                                  │
//	    └─ok──> Payload                    └─ok──> Payload
//
// What counts as a failure:
//
//   - transport errors (connection refused, timeout, TLS): retried
//   - status >= 400: retried, returned as *StatusError with the code and the
//     first 512 bytes of the body
//   - a body that is not a JSON object: *DecodeError, returned at once
//     without retry since repeating the request would yield the same body
//
// Each retried failure is logged at error level as
//
//	[Attempt 2/5] Error fetching API data: HTTP 503: ...
//
// When attempts run out the last error is returned unchanged, so callers can
// use errors.As to inspect it.
//
// # Cancellation
//
// The context is attached to every request and to the wait between attempts.
// Cancelling it aborts the current request or wait and Fetch returns
// ctx.Err(). A cancelled attempt is not logged.
//
// # Implementation
//
// Retry scheduling is delegated to github.com/cenkalti/backoff/v4:
//
//   - NewConstantBackOff(Delay) wrapped in WithMaxRetries(N-1)
//   - WithContext for cancellation
//   - Permanent for decode and request construction errors
//   - RetryNotifyWithData, whose notify hook is Options.OnRetry
//
// # Decoding
//
// Bodies are decoded with json.Decoder.UseNumber, so numeric fields arrive
// as json.Number and render exactly as the provider sent them ("282.55" stays
// "282.55"). Arrays and null at the top level are decode errors.
//
// # Metrics
//
// When Options.Metrics is set every attempt increments
// apiwatchdog_fetch_attempts_total and every failed attempt increments
// apiwatchdog_fetch_failures_total, both labelled with Options.Label.
//
// # Usage Example
//
//	client := fetch.New(fetch.Options{
//	    MaxRetries: 5,
//	    Delay:      5 * time.Second,
//	    Logger:     dataLog,
//	    Metrics:    m,
//	    Label:      "weather",
//	})
//	payload, err := client.Fetch(ctx, provider.URL())
//	var statusErr *fetch.StatusError
//	if errors.As(err, &statusErr) {
//	    // statusErr.StatusCode, statusErr.Body
//	}
package fetch
