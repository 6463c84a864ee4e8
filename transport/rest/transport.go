// Package rest implements transport.Transport on top of net/http. Connection
// reuse, TLS and timeouts are delegated to the standard library's pooling
// HTTP client.
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dan-strohschein/websql-driver/protocol"
	"github.com/dan-strohschein/websql-driver/transport"
)

// Options configures the REST transport.
type Options struct {
	// Timeout applied to each exchange when the caller's context carries no
	// deadline. Default: 30s.
	Timeout time.Duration

	// TLSConfig provides custom TLS configuration. If nil, the standard
	// defaults apply.
	TLSConfig *tls.Config

	// TLSInsecureSkipVerify skips certificate validation (for development only).
	TLSInsecureSkipVerify bool

	// MaxIdleConns is the connection pool size. Default: 10.
	MaxIdleConns int

	// MaxIdleConnsPerHost limits idle connections kept per host. Default: 10.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is the duration after which idle connections are closed.
	// Default: 5m.
	IdleConnTimeout time.Duration

	// HTTPClient overrides the internally built client. When set, the pool and
	// TLS options above are ignored.
	HTTPClient *http.Client
}

// RESTTransport implements transport.Transport for a single endpoint URL.
type RESTTransport struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	closed   atomic.Bool
	metrics  restMetrics
}

// restMetrics tracks transport performance.
type restMetrics struct {
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
	latencySum    atomic.Int64 // nanoseconds
	lastError     error
	lastErrorTime time.Time
	mu            sync.RWMutex
}

// New creates a REST transport bound to the given endpoint URL.
func New(endpoint string, opts Options) (*RESTTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid endpoint URL %q", endpoint)
	}

	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 10
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = 10
	}
	if opts.IdleConnTimeout == 0 {
		opts.IdleConnTimeout = 5 * time.Minute
	}

	client := opts.HTTPClient
	if client == nil {
		tlsConfig := opts.TLSConfig
		if tlsConfig == nil && opts.TLSInsecureSkipVerify {
			tlsConfig = &tls.Config{InsecureSkipVerify: true}
		} else if tlsConfig != nil && opts.TLSInsecureSkipVerify {
			tlsConfig = tlsConfig.Clone()
			tlsConfig.InsecureSkipVerify = true
		}

		client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:     tlsConfig,
				MaxIdleConns:        opts.MaxIdleConns,
				MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
				IdleConnTimeout:     opts.IdleConnTimeout,
			},
		}
	}

	return &RESTTransport{
		endpoint: endpoint,
		client:   client,
		timeout:  opts.Timeout,
	}, nil
}

// Post implements transport.Transport.
func (t *RESTTransport) Post(ctx context.Context, body []byte, headers map[string]string) (*transport.Response, error) {
	if t.closed.Load() {
		return nil, protocol.NewTransportError(protocol.ErrorCodeTransportClosed, "transport is closed", nil)
	}

	start := time.Now()
	t.metrics.totalRequests.Add(1)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		t.recordError(err)
		return nil, protocol.WrapConnectionError(err, map[string]interface{}{"endpoint": t.endpoint})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.recordError(err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, protocol.WrapTimeoutError(err, map[string]interface{}{"endpoint": t.endpoint})
		}
		return nil, protocol.WrapConnectionError(err, map[string]interface{}{"endpoint": t.endpoint})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.recordError(err)
		return nil, protocol.WrapConnectionError(err, map[string]interface{}{
			"endpoint": t.endpoint,
			"phase":    "read_body",
		})
	}

	t.metrics.bytesSent.Add(int64(len(body)))
	t.metrics.bytesReceived.Add(int64(len(respBody)))
	t.metrics.latencySum.Add(int64(time.Since(start)))

	return &transport.Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// Close marks the transport closed and drops idle connections.
func (t *RESTTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if tr, ok := t.client.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return nil
}

// IsHealthy implements transport.Transport.
func (t *RESTTransport) IsHealthy() bool {
	return !t.closed.Load()
}

// GetMetrics implements transport.Transport.
func (t *RESTTransport) GetMetrics() transport.Metrics {
	t.metrics.mu.RLock()
	lastError := t.metrics.lastError
	lastErrorTime := t.metrics.lastErrorTime
	t.metrics.mu.RUnlock()

	total := t.metrics.totalRequests.Load()
	var avg time.Duration
	if total > 0 {
		avg = time.Duration(t.metrics.latencySum.Load() / total)
	}

	return transport.Metrics{
		TotalRequests:  total,
		TotalErrors:    t.metrics.totalErrors.Load(),
		AverageLatency: avg,
		LastError:      lastError,
		LastErrorTime:  lastErrorTime,
		BytesSent:      t.metrics.bytesSent.Load(),
		BytesReceived:  t.metrics.bytesReceived.Load(),
	}
}

func (t *RESTTransport) recordError(err error) {
	t.metrics.totalErrors.Add(1)
	t.metrics.mu.Lock()
	t.metrics.lastError = err
	t.metrics.lastErrorTime = time.Now()
	t.metrics.mu.Unlock()
}
