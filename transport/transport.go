// Package transport defines the transport layer abstraction for the WebSQL
// batch service.
package transport

import (
	"context"
	"time"
)

// Response is the raw outcome of a single HTTP exchange.
type Response struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the full response body.
	Body []byte
}

// Transport defines the interface for performing a single request/response
// exchange with the server. Implementations must be safe for concurrent use.
type Transport interface {
	// Post sends one JSON body to the configured endpoint and returns the raw
	// response. It performs exactly one exchange: no retries.
	Post(ctx context.Context, body []byte, headers map[string]string) (*Response, error)

	// Close releases any resources held by the transport
	Close() error

	// IsHealthy returns whether the transport is usable
	IsHealthy() bool

	// GetMetrics returns transport performance metrics
	GetMetrics() Metrics
}

// Metrics contains performance and health metrics for a transport.
type Metrics struct {
	// TotalRequests is the total number of requests sent
	TotalRequests int64

	// TotalErrors is the total number of errors encountered
	TotalErrors int64

	// AverageLatency is the average round-trip latency
	AverageLatency time.Duration

	// LastError is the most recent error encountered
	LastError error

	// LastErrorTime is when the last error occurred
	LastErrorTime time.Time

	// BytesSent is the total request body bytes sent
	BytesSent int64

	// BytesReceived is the total response body bytes received
	BytesReceived int64
}

// Factory creates new transport instances bound to an endpoint URL.
type Factory func(endpoint string) (Transport, error)
