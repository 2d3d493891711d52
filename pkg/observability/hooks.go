// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about task processing, node rendering, cache operations
// and the HTTP API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the processor and the
// renderer stay free of any particular metrics backend. pkg/metrics provides
// a Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTaskHooks(&myTaskHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Task().OnTaskStart(ctx, taskID)
//	// ... generate docs ...
//	observability.Task().OnTaskComplete(ctx, taskID, outcome, nodes, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Task Hooks
// =============================================================================

// TaskHooks receives events from the documentation task processor.
type TaskHooks interface {
	// OnTaskSubmitted records a task entering the queue.
	OnTaskSubmitted(ctx context.Context, taskID string)

	// OnTaskStart records the worker picking a task up.
	OnTaskStart(ctx context.Context, taskID string)

	// OnTaskComplete records a terminal outcome.
	OnTaskComplete(ctx context.Context, taskID, outcome string, nodes int, duration time.Duration)

	// OnNodeDocumented records one leaf document written for a class.
	OnNodeDocumented(ctx context.Context, class string)

	// OnNodeSkipped records a spawner or node that produced no document.
	OnNodeSkipped(ctx context.Context, reason string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from node image rendering.
type RenderHooks interface {
	// OnRender records one render pass ("simple" or "advanced").
	OnRender(ctx context.Context, pass string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnResponse records a served request by its route pattern.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTaskHooks is a no-op implementation of TaskHooks.
type NoopTaskHooks struct{}

func (NoopTaskHooks) OnTaskSubmitted(context.Context, string)                            {}
func (NoopTaskHooks) OnTaskStart(context.Context, string)                                {}
func (NoopTaskHooks) OnTaskComplete(context.Context, string, string, int, time.Duration) {}
func (NoopTaskHooks) OnNodeDocumented(context.Context, string)                           {}
func (NoopTaskHooks) OnNodeSkipped(context.Context, string)                              {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRender(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	taskHooks   TaskHooks   = NoopTaskHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetTaskHooks registers custom task hooks.
// This should be called once at application startup before any task is submitted.
func SetTaskHooks(h TaskHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		taskHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Task returns the registered task hooks.
func Task() TaskHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return taskHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	taskHooks = NoopTaskHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
