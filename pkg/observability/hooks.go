// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about enrichment runs, cache lookups, and upstream fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEnrichHooks(&myEnrichHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Enrich().OnRunStart(ctx, len(ids))
//	// ... enrichment pass ...
//	observability.Enrich().OnRunComplete(ctx, len(records), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Enrichment Hooks
// =============================================================================

// EnrichHooks receives events from the enrichment pipeline.
type EnrichHooks interface {
	// OnRunStart fires when a pipeline pass begins over a distinct id set.
	OnRunStart(ctx context.Context, idCount int)

	// OnRunComplete fires when a pass ends, successfully or not.
	OnRunComplete(ctx context.Context, recordCount int, duration time.Duration, err error)

	// OnFetch records one upstream fetch for a fragment field.
	OnFetch(ctx context.Context, field string, releaseID int64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from fragment cache lookups.
type CacheHooks interface {
	// OnCacheHit records a fresh-fragment hit for a field.
	OnCacheHit(ctx context.Context, field string)

	// OnCacheMiss records a stale or missing fragment for a field.
	OnCacheMiss(ctx context.Context, field string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEnrichHooks is a no-op implementation of EnrichHooks.
type NoopEnrichHooks struct{}

func (NoopEnrichHooks) OnRunStart(context.Context, int)                              {}
func (NoopEnrichHooks) OnRunComplete(context.Context, int, time.Duration, error)     {}
func (NoopEnrichHooks) OnFetch(context.Context, string, int64, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	enrichHooks EnrichHooks = NoopEnrichHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetEnrichHooks registers custom enrichment hooks.
// This should be called once at application startup before any runs.
func SetEnrichHooks(h EnrichHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		enrichHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any runs.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Enrich returns the registered enrichment hooks.
func Enrich() EnrichHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return enrichHooks
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
	enrichHooks = NoopEnrichHooks{}
	cacheHooks = NoopCacheHooks{}
}
