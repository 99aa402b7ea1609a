package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/waxrank/waxrank/pkg/cache"
	"github.com/waxrank/waxrank/pkg/discogs"
	"github.com/waxrank/waxrank/pkg/observability"
	"github.com/waxrank/waxrank/pkg/score"
)

// progressEvery controls how often the runner logs pass progress.
const progressEvery = 25

// Options configures a single pipeline pass.
type Options struct {
	// NoCache bypasses the fragment store entirely: every call is a
	// live fetch and nothing is persisted.
	NoCache bool

	// CachePath is where the store is persisted after the pass.
	// Ignored when NoCache is set; empty means don't persist.
	CachePath string

	// MarketTTL and ReleaseTTL bound fragment freshness. Non-positive
	// values fall back to the package defaults.
	MarketTTL  time.Duration
	ReleaseTTL time.Duration
}

// Stats summarizes a pass for logging and the CLI summary line.
type Stats struct {
	Distinct    int // distinct ids processed
	MarketHits  int // marketplace_stats served from cache
	ReleaseHits int // release_details served from cache
}

// Runner drives the enrichment pass. Requests go out serially through
// the client's throttle, so the aggregate rate never exceeds the
// upstream quota.
type Runner struct {
	api    API
	store  *cache.Store
	logger *log.Logger
}

// NewRunner creates a runner. A nil store gets a fresh empty one; a nil
// logger falls back to the default.
func NewRunner(api API, store *cache.Store, logger *log.Logger) *Runner {
	if store == nil {
		store = cache.NewStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{api: api, store: store, logger: logger}
}

// Run enriches the distinct ids (first-encountered order), scores and
// ranks the merged records, and persists the store once at the end of
// the pass. A terminal fetch failure aborts the whole pass with no
// partial output; fragments already verified complete stay in memory but
// are not persisted.
func (r *Runner) Run(ctx context.Context, ids []int64, opts Options) ([]Record, Stats, error) {
	todo := distinct(ids)
	stats := Stats{Distinct: len(todo)}

	observability.Enrich().OnRunStart(ctx, len(todo))
	start := time.Now()

	records, err := r.pass(ctx, todo, opts, &stats)
	observability.Enrich().OnRunComplete(ctx, len(records), time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}

	if !opts.NoCache && opts.CachePath != "" {
		if err := r.store.Save(opts.CachePath); err != nil {
			return nil, stats, fmt.Errorf("persisting cache: %w", err)
		}
		r.logger.Info("cache persisted",
			"path", opts.CachePath,
			"marketplace_hits", stats.MarketHits,
			"release_hits", stats.ReleaseHits,
		)
	}

	sortRecords(records)
	return records, stats, nil
}

func (r *Runner) pass(ctx context.Context, ids []int64, opts Options, stats *Stats) ([]Record, error) {
	enricher := NewEnricher(r.api, r.store, opts.MarketTTL, opts.ReleaseTTL)

	records := make([]Record, 0, len(ids))
	for i, id := range ids {
		var rec Record
		var err error
		if opts.NoCache {
			rec, err = r.fetchDirect(ctx, id)
		} else {
			rec, err = r.fetchCached(ctx, enricher, id, stats)
		}
		if err != nil {
			return nil, fmt.Errorf("enriching release %d: %w", id, err)
		}

		rec.LiquidityScore = score.Liquidity(rec.scoreInput())
		records = append(records, rec)

		if (i+1)%progressEvery == 0 || i+1 == len(ids) {
			r.logger.Info("enrichment progress", "done", i+1, "total", len(ids))
		}
	}
	return records, nil
}

// fetchCached runs both enrichment fetchers through the store.
func (r *Runner) fetchCached(ctx context.Context, e *Enricher, id int64, stats *Stats) (Record, error) {
	ms, hit, err := e.MarketStats(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if hit {
		stats.MarketHits++
	}

	rd, hit, err := e.ReleaseDetails(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if hit {
		stats.ReleaseHits++
	}

	return Record{ReleaseID: id, MarketStats: ms, ReleaseDetails: rd}, nil
}

// fetchDirect bypasses the store: live fetches, no persistence.
func (r *Runner) fetchDirect(ctx context.Context, id int64) (Record, error) {
	raw, err := r.api.MarketplaceStats(ctx, id)
	if errors.Is(err, discogs.ErrNotFound) {
		raw = nil
	} else if err != nil {
		return Record{}, err
	}

	rel, err := r.api.Release(ctx, id)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ReleaseID:      id,
		MarketStats:    normalizeMarketStats(raw),
		ReleaseDetails: normalizeReleaseDetails(rel),
	}, nil
}
