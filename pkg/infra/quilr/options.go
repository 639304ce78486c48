package quilr

import (
	"time"

	"github.com/quilr/guardrails-go/pkg/infra/httpx"
)

// ClientOption is a function that configures an HTTPClient
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client httpx.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCircuitBreaker sets a custom circuit breaker
func WithCircuitBreaker(breaker httpx.CircuitBreaker) ClientOption {
	return func(c *HTTPClient) {
		if breaker != nil {
			c.circuitBreaker = breaker
		}
	}
}

// WithCheckTimeout overrides the per-check deadline
func WithCheckTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.checkTimeout = timeout
		}
	}
}
