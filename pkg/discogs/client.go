// Package discogs implements the upstream Discogs API client.
//
// The client serializes every request through a Throttle that keeps the
// aggregate request rate under the published quota (60/minute), and wraps
// each logical GET in a bounded retry loop that honors upstream
// rate-limit signals (429 + Retry-After) and retries transient server and
// transport failures with linear backoff.
package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/waxrank/waxrank/pkg/errors"
)

const (
	// DefaultBaseURL is the Discogs API root.
	DefaultBaseURL = "https://api.discogs.com"

	// DefaultCurrency is the currency for marketplace price lookups.
	DefaultCurrency = "USD"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMinInterval spaces requests ~1.05s apart (~57 req/min),
	// keeping a buffer under the upstream's 60/min ceiling.
	DefaultMinInterval = 1050 * time.Millisecond

	// maxAttempts bounds the retry loop for a single logical GET.
	maxAttempts = 5

	// defaultRetryAfter is used when a 429 response omits Retry-After.
	defaultRetryAfter = 60 * time.Second

	// maxDiagnostic caps the response text carried in terminal errors.
	maxDiagnostic = 300
)

// ErrNotFound is returned for 404 responses on endpoints that allow them.
var ErrNotFound = errors.New("not found")

// Throttle enforces a minimum interval between requests.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle with the given minimum inter-request
// interval. A zero or negative interval disables throttling.
func NewThrottle(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next request slot is available or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Client is a rate-limited, retrying Discogs API client.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	currency  string
	http      *http.Client
	throttle  *Throttle

	// sleep is overridable in tests so retry backoff doesn't stall them.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCurrency sets the marketplace price currency.
func WithCurrency(curr string) Option {
	return func(c *Client) { c.currency = curr }
}

// WithThrottle sets a custom request throttle.
func WithThrottle(t *Throttle) Option {
	return func(c *Client) { c.throttle = t }
}

// WithUserAgent sets the client identification string.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Discogs client authenticated with the given personal
// access token. A missing token is a configuration error, not a deferred
// network failure.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingToken,
			"missing Discogs token: set DISCOGS_TOKEN or add token to the config file")
	}
	c := &Client{
		baseURL:   DefaultBaseURL,
		token:     token,
		userAgent: "waxrank/dev",
		currency:  DefaultCurrency,
		http:      &http.Client{Timeout: DefaultTimeout},
		throttle:  NewThrottle(DefaultMinInterval),
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Currency returns the configured marketplace currency.
func (c *Client) Currency() string { return c.currency }

// outcome tags the result of a single request attempt. Separating the
// classification from the retry loop keeps the policy in one place.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeNotFound
	outcomeRetryAfter   // 429: wait the upstream-provided duration
	outcomeRetryBackoff // transient: wait attempt-scaled linear backoff
	outcomeTerminal
)

// attemptResult is one classified request attempt.
type attemptResult struct {
	outcome outcome
	wait    time.Duration // only for outcomeRetryAfter
	status  int
	body    []byte
	err     error
}

// classify maps a response (or transport error) to a retry outcome.
func classify(resp *http.Response, err error, allowNotFound bool) attemptResult {
	if err != nil {
		return attemptResult{outcome: outcomeRetryBackoff, err: err}
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return attemptResult{outcome: outcomeRetryBackoff, status: resp.StatusCode, err: readErr}
	}

	res := attemptResult{status: resp.StatusCode, body: body}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		res.outcome = outcomeRetryAfter
		res.wait = retryAfter(resp.Header.Get("Retry-After"))
	case allowNotFound && resp.StatusCode == http.StatusNotFound:
		res.outcome = outcomeNotFound
	case resp.StatusCode == http.StatusInternalServerError,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		res.outcome = outcomeRetryBackoff
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res.outcome = outcomeSuccess
	default:
		res.outcome = outcomeTerminal
	}
	return res
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRetryAfter
}

// getJSON performs one logical GET with throttling and bounded retries,
// decoding the response body into v. With allowNotFound set, a 404 returns
// ErrNotFound instead of an error escalation.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, allowNotFound bool, v any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastStatus int
	var lastText string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.throttle.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Authorization", "Discogs token="+c.token)

		resp, doErr := c.http.Do(req)
		res := classify(resp, doErr, allowNotFound)

		if res.status != 0 {
			lastStatus = res.status
		}
		switch {
		case res.err != nil:
			lastText = truncate(res.err.Error())
		case len(res.body) > 0:
			lastText = truncate(string(res.body))
		}

		switch res.outcome {
		case outcomeSuccess:
			if err := json.Unmarshal(res.body, v); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeFetchFailed, err,
					"invalid JSON from %s (status=%d)", reqURL, res.status)
			}
			return nil

		case outcomeNotFound:
			return ErrNotFound

		case outcomeRetryAfter:
			if err := c.sleep(ctx, res.wait); err != nil {
				return err
			}

		case outcomeRetryBackoff:
			if err := c.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
				return err
			}

		case outcomeTerminal:
			return apperrors.New(apperrors.ErrCodeFetchFailed,
				"GET %s failed (status=%d, response=%s)", reqURL, res.status, lastText)
		}
	}

	return apperrors.New(apperrors.ErrCodeFetchFailed,
		"GET %s failed after %d attempts (last_status=%d, last_response=%s)",
		reqURL, maxAttempts, lastStatus, lastText)
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string) string {
	if len(s) > maxDiagnostic {
		return s[:maxDiagnostic]
	}
	return s
}
