// Package mock provides a scriptable transport.Transport for testing.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dan-strohschein/websql-driver/transport"
)

// reply is one scripted exchange outcome.
type reply struct {
	status int
	body   []byte
	err    error
}

// MockTransport implements transport.Transport for testing. Replies are
// consumed in FIFO order; the last one is repeated once the script runs out.
type MockTransport struct {
	mu      sync.Mutex
	replies []reply
	healthy bool
	closed  bool
	delay   time.Duration

	// Call tracking
	postCalls  atomic.Int32
	closeCalls atomic.Int32

	// History of request bodies and headers, in call order
	bodyHistory   [][]byte
	headerHistory []map[string]string

	metrics mockMetrics
}

type mockMetrics struct {
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
}

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{healthy: true}
}

// WithReply queues a scripted status/body reply.
func (m *MockTransport) WithReply(status int, body []byte) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply{status: status, body: body})
	return m
}

// WithError queues a scripted transport failure.
func (m *MockTransport) WithError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply{err: err})
	return m
}

// WithDelay makes every Post block for the given duration, honoring context
// cancellation.
func (m *MockTransport) WithDelay(d time.Duration) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithUnhealthy marks the transport unhealthy.
func (m *MockTransport) WithUnhealthy() *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = false
	return m
}

// Post implements transport.Transport.
func (m *MockTransport) Post(ctx context.Context, body []byte, headers map[string]string) (*transport.Response, error) {
	m.postCalls.Add(1)
	m.metrics.totalRequests.Add(1)

	m.mu.Lock()
	delay := m.delay
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)
	m.bodyHistory = append(m.bodyHistory, bodyCopy)
	headersCopy := make(map[string]string, len(headers))
	for k, v := range headers {
		headersCopy[k] = v
	}
	m.headerHistory = append(m.headerHistory, headersCopy)

	var r reply
	switch {
	case len(m.replies) == 0:
		r = reply{status: 200, body: []byte(`{"results":[]}`)}
	case len(m.replies) == 1:
		r = m.replies[0]
	default:
		r = m.replies[0]
		m.replies = m.replies[1:]
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.metrics.totalErrors.Add(1)
			return nil, ctx.Err()
		}
	}

	if r.err != nil {
		m.metrics.totalErrors.Add(1)
		return nil, r.err
	}

	m.metrics.bytesSent.Add(int64(len(body)))
	m.metrics.bytesReceived.Add(int64(len(r.body)))
	return &transport.Response{StatusCode: r.status, Body: r.body}, nil
}

// Close implements transport.Transport.
func (m *MockTransport) Close() error {
	m.closeCalls.Add(1)
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// IsHealthy implements transport.Transport.
func (m *MockTransport) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy && !m.closed
}

// GetMetrics implements transport.Transport.
func (m *MockTransport) GetMetrics() transport.Metrics {
	return transport.Metrics{
		TotalRequests: m.metrics.totalRequests.Load(),
		TotalErrors:   m.metrics.totalErrors.Load(),
		BytesSent:     m.metrics.bytesSent.Load(),
		BytesReceived: m.metrics.bytesReceived.Load(),
	}
}

// PostCalls returns how many times Post was invoked.
func (m *MockTransport) PostCalls() int {
	return int(m.postCalls.Load())
}

// LastBody returns the most recent request body, or nil.
func (m *MockTransport) LastBody() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.bodyHistory) == 0 {
		return nil
	}
	return m.bodyHistory[len(m.bodyHistory)-1]
}

// LastHeaders returns the most recent request headers, or nil.
func (m *MockTransport) LastHeaders() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.headerHistory) == 0 {
		return nil
	}
	return m.headerHistory[len(m.headerHistory)-1]
}
