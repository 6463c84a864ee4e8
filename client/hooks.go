package client

import (
	"context"
	"time"
)

// HookContext carries information about one Send exchange. It is passed to
// hooks for inspection; Metadata lets a hook pass data from Before to After.
type HookContext struct {
	// ItemCount is the number of sub-requests in the batch
	ItemCount int

	// BodySize is the encoded request body size in bytes
	BodySize int

	// Fingerprint is the xxhash digest of the encoded body, for correlating
	// client and server logs
	Fingerprint uint64

	// TraceID is the unique identifier for this exchange
	TraceID string

	// StartTime is when the exchange began
	StartTime time.Time

	// Metadata allows hooks to store arbitrary data between Before/After
	Metadata map[string]interface{}

	// StatusCode is the HTTP status (set after the exchange, 0 on transport
	// failure; available in After)
	StatusCode int

	// Error stores any error that occurred (available in After)
	Error error

	// Duration is the exchange time (available in After)
	Duration time.Duration
}

// Hook is the interface for observing Send exchanges. A Before error aborts
// the exchange; an After error replaces the exchange's error.
type Hook interface {
	// Name returns the unique name of this hook
	Name() string

	// Before is called before the request is transmitted
	Before(ctx context.Context, hookCtx *HookContext) error

	// After is called after the exchange (even if it failed)
	After(ctx context.Context, hookCtx *HookContext) error
}

// hookEntry wraps a Hook with its registration order for stable iteration.
type hookEntry struct {
	hook  Hook
	order int
}

// RegisterHook adds a hook to the client's hook chain. Hooks run in FIFO
// registration order; registering a hook with an existing name replaces it in
// place.
func (c *Client) RegisterHook(hook Hook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()

	for i, entry := range c.hooks {
		if entry.hook.Name() == hook.Name() {
			c.hooks[i].hook = hook
			c.logger.Info("hook replaced", String("hook", hook.Name()))
			return
		}
	}

	order := len(c.hooks)
	c.hooks = append(c.hooks, hookEntry{hook: hook, order: order})
	c.logger.Info("hook registered", String("hook", hook.Name()), Int("order", order))
}

// UnregisterHook removes a hook by name. Returns true if it was found.
func (c *Client) UnregisterHook(name string) bool {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()

	for i, entry := range c.hooks {
		if entry.hook.Name() == name {
			c.hooks = append(c.hooks[:i], c.hooks[i+1:]...)
			c.logger.Info("hook unregistered", String("hook", name))
			return true
		}
	}

	return false
}

// GetHooks returns the names of all registered hooks in execution order.
func (c *Client) GetHooks() []string {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()

	names := make([]string, len(c.hooks))
	for i, entry := range c.hooks {
		names[i] = entry.hook.Name()
	}
	return names
}

// executeBeforeHooks runs all Before hooks in order. The first error aborts.
func (c *Client) executeBeforeHooks(ctx context.Context, hookCtx *HookContext) error {
	for _, hook := range c.snapshotHooks() {
		if err := hook.Before(ctx, hookCtx); err != nil {
			c.logger.Debug("hook aborted send",
				String("hook", hook.Name()),
				String("trace_id", hookCtx.TraceID),
				Error("error", err))
			return err
		}
	}
	return nil
}

// executeAfterHooks runs all After hooks in order, even if one errors; the
// last error wins.
func (c *Client) executeAfterHooks(ctx context.Context, hookCtx *HookContext) error {
	var lastErr error
	for _, hook := range c.snapshotHooks() {
		if err := hook.After(ctx, hookCtx); err != nil {
			c.logger.Debug("hook returned error in After",
				String("hook", hook.Name()),
				String("trace_id", hookCtx.TraceID),
				Error("error", err))
			lastErr = err
		}
	}
	return lastErr
}

func (c *Client) snapshotHooks() []Hook {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()

	hooks := make([]Hook, len(c.hooks))
	for i, entry := range c.hooks {
		hooks[i] = entry.hook
	}
	return hooks
}
