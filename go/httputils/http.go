package httputils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"go.skia.org/perfbisect/go/sklog"
)

const (
	DIAL_TIMEOUT    = time.Minute
	REQUEST_TIMEOUT = 5 * time.Minute

	// Two tries in total: the initial request plus one retry.
	DEFAULT_MAX_ATTEMPTS = 2

	INITIAL_INTERVAL     = 500 * time.Millisecond
	MAX_INTERVAL         = 10 * time.Second
	RANDOMIZATION_FACTOR = 0.5
	BACKOFF_MULTIPLIER   = 1.5

	MAX_BYTES_IN_RESPONSE_BODY = 10 * 1024
)

// TransientError is returned when a request still failed after every
// configured attempt. Callers may choose to retry later.
type TransientError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %s", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ClientConfig represents options for the behavior of an http.Client. Each field, when set,
// modifies the default http.Client behavior.
//
// Example:
//
//	c := DefaultClientConfig().WithMaxAttempts(3).Client()
type ClientConfig struct {
	// DialTimeout, if non-zero, sets the http.Transport Dial timeout.
	DialTimeout time.Duration

	// RequestTimeout, if non-zero, sets the http.Client.Timeout.
	RequestTimeout time.Duration

	// Retries, if non-nil, uses a BackOffTransport to retry requests that fail at the
	// transport level or with a 5xx response.
	Retries *BackOffConfig
}

// DefaultClientConfig returns a ClientConfig with reasonable defaults.
//   - Timeouts are DIAL_TIMEOUT and REQUEST_TIMEOUT.
//   - Requests are tried DEFAULT_MAX_ATTEMPTS times.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DialTimeout:    DIAL_TIMEOUT,
		RequestTimeout: REQUEST_TIMEOUT,
		Retries:        DefaultBackOffConfig(),
	}
}

// WithMaxAttempts returns a new ClientConfig which tries each request at most n times.
func (c ClientConfig) WithMaxAttempts(n int) ClientConfig {
	r := DefaultBackOffConfig()
	if c.Retries != nil {
		cp := *c.Retries
		r = &cp
	}
	r.maxAttempts = n
	c.Retries = r
	return c
}

// WithoutRetries returns a new ClientConfig where requests are not retried.
func (c ClientConfig) WithoutRetries() ClientConfig {
	c.Retries = nil
	return c
}

// WithRequestTimeout returns a new ClientConfig with the RequestTimeout set as specified.
func (c ClientConfig) WithRequestTimeout(d time.Duration) ClientConfig {
	c.RequestTimeout = d
	return c
}

// Client returns a new http.Client as configured by the ClientConfig.
func (c ClientConfig) Client() *http.Client {
	var t http.RoundTripper = http.DefaultTransport
	if c.DialTimeout != 0 {
		t = &http.Transport{
			DialContext: (&net.Dialer{Timeout: c.DialTimeout}).DialContext,
		}
	}
	if c.Retries != nil {
		t = NewBackOffTransport(c.Retries, t)
	}
	return &http.Client{
		Transport: t,
		Timeout:   c.RequestTimeout,
	}
}

// BackOffConfig controls the retry schedule of a BackOffTransport.
type BackOffConfig struct {
	initialInterval     time.Duration
	maxInterval         time.Duration
	randomizationFactor float64
	backOffMultiplier   float64
	maxAttempts         int
}

func DefaultBackOffConfig() *BackOffConfig {
	return &BackOffConfig{
		initialInterval:     INITIAL_INTERVAL,
		maxInterval:         MAX_INTERVAL,
		randomizationFactor: RANDOMIZATION_FACTOR,
		backOffMultiplier:   BACKOFF_MULTIPLIER,
		maxAttempts:         DEFAULT_MAX_ATTEMPTS,
	}
}

// WithInterval returns a copy of the config whose first wait is initial and
// whose waits never exceed max.
func (b *BackOffConfig) WithInterval(initial, max time.Duration) *BackOffConfig {
	cp := *b
	cp.initialInterval = initial
	cp.maxInterval = max
	return &cp
}

// MaxAttempts is the total number of tries, including the first.
func (b *BackOffConfig) MaxAttempts() int {
	if b.maxAttempts < 1 {
		return 1
	}
	return b.maxAttempts
}

func (b *BackOffConfig) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = b.initialInterval
	exp.MaxInterval = b.maxInterval
	exp.RandomizationFactor = b.randomizationFactor
	exp.Multiplier = b.backOffMultiplier
	// The attempt cap bounds retries, not the elapsed time.
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(b.MaxAttempts()-1)), ctx)
}

// BackOffTransport retries requests which fail at the transport level or
// return a 5xx status.
type BackOffTransport struct {
	Transport     http.RoundTripper
	backOffConfig *BackOffConfig
}

// NewBackOffTransport creates a BackOffTransport with the specified config, wrapping the
// given base RoundTripper.
func NewBackOffTransport(config *BackOffConfig, base http.RoundTripper) http.RoundTripper {
	return &BackOffTransport{
		Transport:     base,
		backOffConfig: config,
	}
}

var errServer = errors.New("Server error")

// RoundTrip implements the RoundTripper interface.
func (t *BackOffTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Keep a copy of the body so that it can be replayed on retry.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to read request body")
		}
		_ = req.Body.Close()
	}

	attempts := 0
	var resp *http.Response
	op := func() error {
		attempts++
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		var err error
		resp, err = t.Transport.RoundTrip(req)
		if err != nil {
			if req.Context().Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
			return errServer
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if err == errServer {
			sklog.Warningf("Got server error status code %d while making the HTTP %s request to %s\nResponse: %s", resp.StatusCode, req.Method, req.URL, ReadAndClose(resp.Body))
		} else {
			sklog.Warningf("Got error while making the round trip to %s: %s. Retrying HTTP request after sleeping for %s", req.URL, err, wait)
		}
	}

	err := backoff.RetryNotify(op, t.backOffConfig.newBackOff(req.Context()), notify)
	if err == nil {
		return resp, nil
	}
	if req.Context().Err() != nil {
		return nil, err
	}
	if err == errServer {
		err = errors.Errorf("status %q: %s", resp.Status, ReadAndClose(resp.Body))
	}
	sklog.Warningf("Final attempt failed in spite of retries for HTTP %s request to %s: %s", req.Method, req.URL, err)
	return nil, &TransientError{
		Method:   req.Method,
		URL:      req.URL.String(),
		Attempts: attempts,
		Err:      err,
	}
}

// ReadAndClose reads the content of a ReadCloser (e.g. http Response), and returns it as a string.
// If the response was nil or there was a problem, it will return empty string. The reader,
// if non-null, will be closed by this function.
func ReadAndClose(r io.ReadCloser) string {
	if r != nil {
		defer func() { _ = r.Close() }()
		if b, err := io.ReadAll(io.LimitReader(r, MAX_BYTES_IN_RESPONSE_BODY)); err != nil {
			sklog.Warningf("There was a potential problem reading the response body: %s", err)
		} else {
			return fmt.Sprintf("%q", string(b))
		}
	}
	return ""
}

// GetWithContext is a helper function to execute a GET request to the given url using the
// given client and the provided context.
func GetWithContext(ctx context.Context, c *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create request for %q", url)
	}
	return c.Do(req)
}
