// Package resilience provides a retrying, circuit-breaking HTTP client for
// the external capability providers (cloud API, ticket system).
package resilience

import (
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors.
var (
	// ErrCircuitOpen is returned when the provider's circuit breaker is
	// open and calls are being shed.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Config holds configuration for the resilient HTTP client.
type Config struct {
	// Name identifies the provider for circuit breaker naming.
	Name string

	// Timeout is the per-request timeout. Default: 30s, matching the
	// probe transport timeout.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Default: 2
	MaxRetries uint64

	// RetryInterval is the initial backoff interval. Default: 250ms.
	RetryInterval time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker. Default: 5.
	FailureThreshold uint32

	// CooldownPeriod is how long the breaker stays open before probing
	// again. Default: 30s.
	CooldownPeriod time.Duration

	// InsecureSkipVerify disables TLS verification. Room devices ship
	// with self-signed certificates, so the direct probe needs this.
	InsecureSkipVerify bool
}

// Client wraps http.Client with exponential-backoff retries and a circuit
// breaker per provider.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        Config
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 250 * time.Millisecond
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CooldownPeriod == 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // device certificates are self-signed
		transport = t
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.CooldownPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		breaker: breaker,
		cfg:     cfg,
	}
}

// Do executes the request, retrying transient failures (network errors and
// 5xx responses) with exponential backoff. 4xx responses are returned to
// the caller without retry. Returns ErrCircuitOpen immediately while the
// breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				// Surfaced as an error so the breaker counts it.
				return r, &serverError{status: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		if lastResp != nil {
			// Retries exhausted on a 5xx: hand the response back so the
			// caller can report the status.
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.status)
}

// Doer is the subset of http.Client the capability clients depend on, so
// tests can substitute a plain client or a stub.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Doer = (*Client)(nil)
