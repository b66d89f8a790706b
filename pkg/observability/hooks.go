// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can
// register hooks at startup to receive events about reduction passes,
// rendering, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps the core library free of observability frameworks while
// letting a binary plug in whichever backend it prefers.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReducerHooks(&myReducerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Reducer().OnPassStart(ctx, pass, pageCount)
//	// ... run the pass ...
//	observability.Reducer().OnPassComplete(ctx, pass, removed, duration)
//
// Reducer events are a diagnostic side channel only; they carry no
// contractual meaning and the reduction result is unaffected by the
// registered hooks.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reducer Hooks
// =============================================================================

// ReducerHooks receives events from the fixpoint page reducer.
type ReducerHooks interface {
	// OnPassStart records the start of a scan-and-merge pass over
	// pageCount working pages.
	OnPassStart(ctx context.Context, pass, pageCount int)

	// OnPassComplete records a finished pass and how many pages it removed.
	OnPassComplete(ctx context.Context, pass, removed int, duration time.Duration)

	// OnMerge records one duplicate page being absorbed into its
	// representative.
	OnMerge(ctx context.Context, duplicateID, representativeID int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from artifact rendering.
type RenderHooks interface {
	// OnRenderStart records the start of artifact generation.
	OnRenderStart(ctx context.Context, formats []string)

	// OnRenderComplete records finished artifact generation.
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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

// NoopReducerHooks is a no-op implementation of ReducerHooks.
type NoopReducerHooks struct{}

func (NoopReducerHooks) OnPassStart(context.Context, int, int)                   {}
func (NoopReducerHooks) OnPassComplete(context.Context, int, int, time.Duration) {}
func (NoopReducerHooks) OnMerge(context.Context, int, int)                       {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reducerHooks ReducerHooks = NoopReducerHooks{}
	renderHooks  RenderHooks  = NoopRenderHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetReducerHooks registers custom reducer hooks.
// This should be called once at application startup before any reduction runs.
func SetReducerHooks(h ReducerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reducerHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any rendering.
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

// Reducer returns the registered reducer hooks.
func Reducer() ReducerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reducerHooks
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

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	reducerHooks = NoopReducerHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
