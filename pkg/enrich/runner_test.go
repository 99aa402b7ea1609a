package enrich

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/waxrank/waxrank/pkg/cache"
	"github.com/waxrank/waxrank/pkg/discogs"
	apperrors "github.com/waxrank/waxrank/pkg/errors"
)

func seededAPI() *fakeAPI {
	return &fakeAPI{
		stats: map[int64]*discogs.MarketplaceStats{
			1: {NumForSale: f(12), BlockedFromSale: b(false), LowestPrice: &discogs.Price{Value: 9.99}},
			2: {NumForSale: f(0), BlockedFromSale: b(false)},
			3: {NumForSale: f(5), BlockedFromSale: b(true)},
		},
		releases: map[int64]*discogs.Release{
			1: {ID: 1, Community: &discogs.Community{Want: f(150), Have: f(80)}},
			2: {ID: 2, Community: &discogs.Community{Want: f(3), Have: f(200)}},
			3: {ID: 3, Community: &discogs.Community{Want: f(50), Have: f(10)}},
		},
	}
}

func TestRunDedupesAndRanks(t *testing.T) {
	api := seededAPI()
	r := NewRunner(api, cache.NewStore(), nil)

	records, stats, err := r.Run(context.Background(), []int64{2, 1, 2, 3, 1}, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if stats.Distinct != 3 {
		t.Errorf("Distinct = %d, want 3", stats.Distinct)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if api.statsCalls != 3 || api.releaseCall != 3 {
		t.Errorf("calls = %d/%d, want 3/3 (duplicates must not refetch)", api.statsCalls, api.releaseCall)
	}

	// Highest liquidity first, blocked release last.
	if records[0].ReleaseID != 1 {
		t.Errorf("rank 1 = release %d, want 1", records[0].ReleaseID)
	}
	if records[2].ReleaseID != 3 {
		t.Errorf("last rank = release %d, want blocked release 3", records[2].ReleaseID)
	}
	for i, rec := range records {
		if rec.Rank != i+1 {
			t.Errorf("records[%d].Rank = %d, want %d", i, rec.Rank, i+1)
		}
	}
	for i := 1; i < len(records); i++ {
		if records[i].LiquidityScore > records[i-1].LiquidityScore {
			t.Errorf("records out of order at %d: %f > %f", i, records[i].LiquidityScore, records[i-1].LiquidityScore)
		}
	}
}

func TestRunPersistsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	api := seededAPI()
	store := cache.NewStore()
	r := NewRunner(api, store, nil)

	opts := Options{CachePath: path}
	if _, _, err := r.Run(context.Background(), []int64{1, 2, 3}, opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	reloaded := cache.Load(path)
	if reloaded.Len() != 3 {
		t.Errorf("persisted %d releases, want 3", reloaded.Len())
	}

	// A warm second pass serves everything from cache.
	r2 := NewRunner(api, reloaded, nil)
	_, stats, err := r2.Run(context.Background(), []int64{1, 2, 3}, opts)
	if err != nil {
		t.Fatalf("warm Run error: %v", err)
	}
	if stats.MarketHits != 3 || stats.ReleaseHits != 3 {
		t.Errorf("warm hits = %d/%d, want 3/3", stats.MarketHits, stats.ReleaseHits)
	}
	if api.statsCalls != 3 || api.releaseCall != 3 {
		t.Errorf("warm pass fetched: calls = %d/%d, want 3/3", api.statsCalls, api.releaseCall)
	}
}

func TestRunNoCacheBypassesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	api := seededAPI()
	store := cache.NewStore()
	r := NewRunner(api, store, nil)

	_, stats, err := r.Run(context.Background(), []int64{1, 2}, Options{NoCache: true, CachePath: path})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if stats.MarketHits != 0 || stats.ReleaseHits != 0 {
		t.Errorf("no-cache pass reported hits: %+v", stats)
	}
	if store.Len() != 0 {
		t.Errorf("no-cache pass wrote %d entries to the store", store.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no-cache pass persisted a cache file")
	}
}

func TestRunCachedAndDirectAgree(t *testing.T) {
	ids := []int64{1, 2, 3}

	cached, _, err := NewRunner(seededAPI(), cache.NewStore(), nil).Run(context.Background(), ids, Options{})
	if err != nil {
		t.Fatalf("cached Run error: %v", err)
	}
	direct, _, err := NewRunner(seededAPI(), cache.NewStore(), nil).Run(context.Background(), ids, Options{NoCache: true})
	if err != nil {
		t.Fatalf("direct Run error: %v", err)
	}

	if len(cached) != len(direct) {
		t.Fatalf("record counts differ: %d vs %d", len(cached), len(direct))
	}
	for i := range cached {
		if cached[i].ReleaseID != direct[i].ReleaseID || cached[i].LiquidityScore != direct[i].LiquidityScore {
			t.Errorf("row %d diverges: cached=%d/%f direct=%d/%f",
				i, cached[i].ReleaseID, cached[i].LiquidityScore, direct[i].ReleaseID, direct[i].LiquidityScore)
		}
	}
}

func TestRunAbortsOnTerminalFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	api := seededAPI()
	api.failRelease = apperrors.New(apperrors.ErrCodeFetchFailed, "status=500")
	r := NewRunner(api, cache.NewStore(), nil)

	records, _, err := r.Run(context.Background(), []int64{1, 2, 3}, Options{CachePath: path})
	if err == nil {
		t.Fatal("expected error from failing upstream")
	}
	if records != nil {
		t.Errorf("got %d partial records, want none", len(records))
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed pass persisted a cache file")
	}
}

func TestRunMarketplaceNotFoundStillScores(t *testing.T) {
	api := seededAPI()
	delete(api.stats, 2)
	r := NewRunner(api, cache.NewStore(), nil)

	records, _, err := r.Run(context.Background(), []int64{2}, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.NumForSale != nil || rec.LowestPrice != nil {
		t.Errorf("not-found marketplace fields should be absent, got %+v", rec.MarketStats)
	}
	if rec.LiquidityScore >= 0 {
		t.Errorf("score = %f, want negative for absent supply", rec.LiquidityScore)
	}
}

func TestRunTTLValidityWindow(t *testing.T) {
	api := seededAPI()
	store := cache.NewStore()
	r := NewRunner(api, store, nil)
	ctx := context.Background()

	if _, _, err := r.Run(ctx, []int64{1}, Options{MarketTTL: time.Nanosecond, ReleaseTTL: time.Hour}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	_, stats, err := r.Run(ctx, []int64{1}, Options{MarketTTL: time.Nanosecond, ReleaseTTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	if stats.MarketHits != 0 {
		t.Error("marketplace fragment should have expired")
	}
	if stats.ReleaseHits != 1 {
		t.Error("release fragment should still be fresh")
	}
	if api.statsCalls != 2 {
		t.Errorf("statsCalls = %d, want 2", api.statsCalls)
	}
	if api.releaseCall != 1 {
		t.Errorf("releaseCall = %d, want 1", api.releaseCall)
	}
}
