// Package client implements a client for the WebSQL batch execution service:
// a request builder, a thin HTTP transport binding, and typed decoding of
// per-item results.
package client

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"

	"github.com/dan-strohschein/websql-driver/mapper"
	"github.com/dan-strohschein/websql-driver/protocol"
	"github.com/dan-strohschein/websql-driver/transport"
	"github.com/dan-strohschein/websql-driver/transport/rest"
)

// Client sends batch requests to one WebSQL endpoint. Configuration is
// immutable after construction, so a Client is safe for concurrent use; each
// Send builds its own request body and reads its own response.
type Client struct {
	opts      ClientOptions
	tr        transport.Transport
	codec     protocol.Codec
	logger    Logger
	debugMode atomic.Bool
	hooks     []hookEntry
	hooksMu   sync.RWMutex
}

// NewClient creates a new client with the given options. If opts is nil,
// default options are used (which fail here, since a URL is required).
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	u, err := url.Parse(opts.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errInvalidArgument("URL must be a valid http(s) endpoint", map[string]interface{}{
			"url": opts.URL,
		})
	}

	switch opts.AuthMode {
	case AuthNone, AuthInline, AuthBasic:
	default:
		return nil, errInvalidArgument("unknown auth mode", map[string]interface{}{
			"authMode": int(opts.AuthMode),
		})
	}
	if opts.AuthMode != AuthNone && (opts.User == "" || opts.Password == "") {
		return nil, errInvalidArgument("user and password are required for "+opts.AuthMode.String()+" auth", nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(opts.LogLevel, nil)
	}

	tr := opts.Transport
	if tr == nil {
		defaults := DefaultOptions()
		timeout := opts.DefaultTimeout
		if timeout == 0 {
			timeout = defaults.DefaultTimeout
		}
		tr, err = rest.New(opts.URL, rest.Options{
			Timeout:               timeout,
			TLSConfig:             opts.TLSConfig,
			TLSInsecureSkipVerify: opts.TLSInsecureSkipVerify,
			MaxIdleConns:          opts.MaxIdleConns,
			IdleConnTimeout:       opts.IdleConnTimeout,
			HTTPClient:            opts.HTTPClient,
		})
		if err != nil {
			return nil, errInvalidArgument("failed to build transport", map[string]interface{}{
				"cause": err.Error(),
			})
		}
	}

	c := &Client{
		opts:   *opts,
		tr:     tr,
		codec:  protocol.NewCodec(),
		logger: logger,
	}
	c.debugMode.Store(opts.DebugMode)

	return c, nil
}

// Send transmits one batch request and returns the decoded per-item results.
// It performs exactly one synchronous POST: transport errors propagate
// unmodified and are never retried, since statements in the batch may have
// side effects. A non-200 response yields a *ServerError; per-item noFail
// failures arrive inside a normal Response with Success=false instead.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Len() == 0 {
		return nil, errInvalidArgument("cannot send an empty request", nil)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.opts.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.DefaultTimeout)
		defer cancel()
	}

	payload := req.wire()
	if c.opts.AuthMode == AuthInline {
		payload.Credentials = &protocol.Credentials{
			User:     c.opts.User,
			Password: c.opts.Password,
		}
	}

	body, err := c.codec.EncodeRequest(payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	traceID := uuid.New().String()
	debugMode := c.debugMode.Load()

	hookCtx := &HookContext{
		ItemCount:   req.Len(),
		BodySize:    len(body),
		Fingerprint: xxhash.Sum64(body),
		TraceID:     traceID,
		StartTime:   start,
		Metadata:    make(map[string]interface{}),
	}

	if err := c.executeBeforeHooks(ctx, hookCtx); err != nil {
		return nil, err
	}

	if debugMode {
		c.logger.Debug("sending batch request",
			String("trace_id", traceID),
			Int("items", req.Len()),
			Int("body_bytes", len(body)),
			String("fingerprint", fingerprintString(hookCtx.Fingerprint)))
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if c.opts.UserAgent != "" {
		headers["User-Agent"] = c.opts.UserAgent
	}
	if c.opts.AuthMode == AuthBasic {
		headers["Authorization"] = basicAuthHeader(c.opts.User, c.opts.Password)
	}

	raw, err := c.tr.Post(ctx, body, headers)
	hookCtx.Duration = time.Since(start)
	if err != nil {
		hookCtx.Error = err
		if hookErr := c.executeAfterHooks(ctx, hookCtx); hookErr != nil {
			err = hookErr
		}
		c.logger.Error("transport failure",
			String("trace_id", traceID),
			Duration("duration", hookCtx.Duration),
			Error("error", err))
		return nil, err
	}
	hookCtx.StatusCode = raw.StatusCode

	resp, err := c.decodeOutcome(req, raw, traceID, debugMode)
	hookCtx.Error = err
	if hookErr := c.executeAfterHooks(ctx, hookCtx); hookErr != nil {
		return nil, hookErr
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("batch request executed",
		String("trace_id", traceID),
		Int("status", raw.StatusCode),
		Int("results", len(resp.Results)),
		Duration("duration", hookCtx.Duration))

	return resp, nil
}

// decodeOutcome classifies the raw HTTP outcome into a Response or a
// ServerError.
func (c *Client) decodeOutcome(req *Request, raw *transport.Response, traceID string, debugMode bool) (*Response, error) {
	if raw.StatusCode != 200 {
		// A Basic-Auth challenge is not guaranteed to carry the service's
		// JSON error shape, so it is classified without parsing the body.
		if raw.StatusCode == 401 && c.opts.AuthMode == AuthBasic {
			return nil, newServerError("Unauthorized", -1, 401)
		}

		errPayload, err := c.codec.DecodeError(raw.Body)
		if err != nil {
			return nil, err
		}
		return nil, newServerError(errPayload.Error, errPayload.ReqIdx, errPayload.Code)
	}

	if debugMode {
		c.logger.Debug("received raw response",
			String("trace_id", traceID),
			Int("status", raw.StatusCode),
			Int("body_bytes", len(raw.Body)))
	}

	payload, err := c.codec.DecodeResults(raw.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		Results:    mapper.FromRecords(payload.Results),
		requested:  req.Len(),
	}

	if len(resp.Results) != req.Len() {
		c.logger.Warn("result count does not match sub-request count",
			String("trace_id", traceID),
			Int("requested", req.Len()),
			Int("received", len(resp.Results)))
	}

	return resp, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.tr.Close()
}

// TransportMetrics returns a snapshot of the underlying transport's metrics.
func (c *Client) TransportMetrics() transport.Metrics {
	return c.tr.GetMetrics()
}

// IsDebugMode reports whether debug logging and verbose errors are enabled.
func (c *Client) IsDebugMode() bool {
	return c.debugMode.Load()
}

// SetDebugMode toggles debug mode at runtime.
func (c *Client) SetDebugMode(enabled bool) {
	c.debugMode.Store(enabled)
}

// GetVersion returns the build version of the client.
func (c *Client) GetVersion() string {
	return Version
}

func basicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func fingerprintString(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
