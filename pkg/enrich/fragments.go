// Package enrich implements the cache-aware enrichment fetchers and the
// pipeline driver that turns a set of release identifiers into scored,
// ranked records.
package enrich

import (
	"github.com/waxrank/waxrank/pkg/discogs"
)

// MarketStats is the cached marketplace fragment shape. Every key is
// serialized even when absent (JSON null), so the persisted shape is
// identical whether the value came from the cache, a fetch, or a
// not-found substitution.
type MarketStats struct {
	NumForSale      *float64 `json:"num_for_sale"`
	BlockedFromSale *bool    `json:"blocked_from_sale"`
	LowestPrice     *float64 `json:"lowest_price"`
}

// ReleaseDetails is the cached community demand fragment shape.
type ReleaseDetails struct {
	WantCount *float64 `json:"want_count"`
	HaveCount *float64 `json:"have_count"`
}

// normalizeMarketStats reduces an upstream marketplace payload to the
// fixed fragment shape. A nil payload (the upstream had no stats for the
// release) yields the all-absent sentinel fragment.
func normalizeMarketStats(raw *discogs.MarketplaceStats) MarketStats {
	if raw == nil {
		return MarketStats{}
	}
	stats := MarketStats{
		NumForSale:      raw.NumForSale,
		BlockedFromSale: raw.BlockedFromSale,
	}
	if raw.LowestPrice != nil {
		v := raw.LowestPrice.Value
		stats.LowestPrice = &v
	}
	return stats
}

// normalizeReleaseDetails reduces an upstream release payload to the
// fixed fragment shape. A missing community object leaves both counters
// absent.
func normalizeReleaseDetails(raw *discogs.Release) ReleaseDetails {
	if raw == nil || raw.Community == nil {
		return ReleaseDetails{}
	}
	return ReleaseDetails{
		WantCount: raw.Community.Want,
		HaveCount: raw.Community.Have,
	}
}
