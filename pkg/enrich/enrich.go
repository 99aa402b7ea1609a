package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/waxrank/waxrank/pkg/cache"
	"github.com/waxrank/waxrank/pkg/discogs"
	"github.com/waxrank/waxrank/pkg/observability"
)

// Default TTLs for the two fragment kinds. Marketplace supply moves
// daily; community demand counters drift over weeks.
const (
	DefaultMarketTTL  = 24 * time.Hour
	DefaultReleaseTTL = 14 * 24 * time.Hour
)

// API is the slice of the upstream client the enrichment layer consumes.
type API interface {
	MarketplaceStats(ctx context.Context, releaseID int64) (*discogs.MarketplaceStats, error)
	Release(ctx context.Context, releaseID int64) (*discogs.Release, error)
}

// Enricher wraps the upstream API with cache-aware fragment logic: a
// fresh cached fragment is returned as-is; anything else is fetched,
// normalized, and stored. Callers never observe a shape difference based
// on where the data came from.
type Enricher struct {
	api        API
	store      *cache.Store
	marketTTL  time.Duration
	releaseTTL time.Duration
}

// NewEnricher creates an enricher over the given API and store.
// Non-positive TTLs fall back to the defaults.
func NewEnricher(api API, store *cache.Store, marketTTL, releaseTTL time.Duration) *Enricher {
	if marketTTL <= 0 {
		marketTTL = DefaultMarketTTL
	}
	if releaseTTL <= 0 {
		releaseTTL = DefaultReleaseTTL
	}
	return &Enricher{
		api:        api,
		store:      store,
		marketTTL:  marketTTL,
		releaseTTL: releaseTTL,
	}
}

// MarketStats returns the marketplace fragment for a release and whether
// it was served from cache. A not-found upstream response is a valid
// empty result and is cached as the all-absent sentinel fragment.
func (e *Enricher) MarketStats(ctx context.Context, releaseID int64) (MarketStats, bool, error) {
	if e.store.Fresh(releaseID, cache.FieldMarketplaceStats, e.marketTTL) {
		frag, _ := e.store.Fragment(releaseID, cache.FieldMarketplaceStats)
		var stats MarketStats
		if err := json.Unmarshal(frag.Data, &stats); err == nil {
			observability.Cache().OnCacheHit(ctx, cache.FieldMarketplaceStats)
			return stats, true, nil
		}
		// Undecodable fragment data: treat as a miss and refetch.
	}
	observability.Cache().OnCacheMiss(ctx, cache.FieldMarketplaceStats)

	start := time.Now()
	raw, err := e.api.MarketplaceStats(ctx, releaseID)
	observability.Enrich().OnFetch(ctx, cache.FieldMarketplaceStats, releaseID, time.Since(start), err)
	if errors.Is(err, discogs.ErrNotFound) {
		raw = nil
	} else if err != nil {
		return MarketStats{}, false, err
	}

	stats := normalizeMarketStats(raw)
	if err := e.store.Put(releaseID, cache.FieldMarketplaceStats, stats); err != nil {
		return MarketStats{}, false, err
	}
	return stats, false, nil
}

// ReleaseDetails returns the community demand fragment for a release and
// whether it was served from cache. Unlike marketplace stats, a missing
// release upstream is an error here.
func (e *Enricher) ReleaseDetails(ctx context.Context, releaseID int64) (ReleaseDetails, bool, error) {
	if e.store.Fresh(releaseID, cache.FieldReleaseDetails, e.releaseTTL) {
		frag, _ := e.store.Fragment(releaseID, cache.FieldReleaseDetails)
		var details ReleaseDetails
		if err := json.Unmarshal(frag.Data, &details); err == nil {
			observability.Cache().OnCacheHit(ctx, cache.FieldReleaseDetails)
			return details, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.FieldReleaseDetails)

	start := time.Now()
	raw, err := e.api.Release(ctx, releaseID)
	observability.Enrich().OnFetch(ctx, cache.FieldReleaseDetails, releaseID, time.Since(start), err)
	if err != nil {
		return ReleaseDetails{}, false, err
	}

	details := normalizeReleaseDetails(raw)
	if err := e.store.Put(releaseID, cache.FieldReleaseDetails, details); err != nil {
		return ReleaseDetails{}, false, err
	}
	return details, false, nil
}
