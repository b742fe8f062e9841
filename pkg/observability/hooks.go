// Package observability provides hooks and tracing for layout, topology and
// cache activity.
//
// Hooks keep the core free of any particular metrics backend. Consumers
// register implementations at startup; libraries call the registered hooks,
// which default to no-ops:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
//	observability.Layout().OnLayoutStart(ctx, "force", len(nodes))
//	// ... compute ...
//	observability.Layout().OnLayoutComplete(ctx, "force", time.Since(start), err)
//
// Tracing uses OpenTelemetry. [InitTracing] installs an OTLP/gRPC exporter
// when an endpoint is configured; otherwise spans go to the global no-op
// provider and cost nothing.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout dispatcher.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, algorithm string, nodeCount int)
	OnLayoutComplete(ctx context.Context, algorithm string, duration time.Duration, err error)
}

// =============================================================================
// Topology Hooks
// =============================================================================

// TopologyHooks receives events from toggle sessions.
type TopologyHooks interface {
	// OnToggle records a toggle pair flip and its new state.
	OnToggle(ctx context.Context, anchor, dependent string, on bool)

	// OnResolve records a recomputed view.
	OnResolve(ctx context.Context, visible, edges, affected int)
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
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}

// NoopTopologyHooks is a no-op implementation of TopologyHooks.
type NoopTopologyHooks struct{}

func (NoopTopologyHooks) OnToggle(context.Context, string, string, bool) {}
func (NoopTopologyHooks) OnResolve(context.Context, int, int, int)       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks   LayoutHooks   = NoopLayoutHooks{}
	topologyHooks TopologyHooks = NoopTopologyHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetTopologyHooks registers custom topology hooks.
func SetTopologyHooks(h TopologyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		topologyHooks = h
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

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Topology returns the registered topology hooks.
func Topology() TopologyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return topologyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	topologyHooks = NoopTopologyHooks{}
	cacheHooks = NoopCacheHooks{}
}
