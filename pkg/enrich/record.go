package enrich

import (
	"sort"

	"github.com/waxrank/waxrank/pkg/score"
)

// Record is the merged, scored result for one distinct release. It is
// recomputed on every pass, even from a fully fresh cache; only the
// fragments are persisted.
type Record struct {
	ReleaseID int64
	MarketStats
	ReleaseDetails
	LiquidityScore float64

	// Rank is the 1-based position after sorting (the "Sell Order").
	Rank int
}

// scoreInput adapts a record to the scorer's input shape.
func (r *Record) scoreInput() score.Input {
	return score.Input{
		NumForSale:      r.NumForSale,
		BlockedFromSale: r.BlockedFromSale,
		WantCount:       r.WantCount,
		HaveCount:       r.HaveCount,
	}
}

// sortRecords orders records by liquidity score descending, breaking
// ties by want count then supply, both descending. The sort is stable,
// so full ties keep first-encountered order.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LiquidityScore != records[j].LiquidityScore {
			return records[i].LiquidityScore > records[j].LiquidityScore
		}
		wi, wj := coerce(records[i].WantCount), coerce(records[j].WantCount)
		if wi != wj {
			return wi > wj
		}
		return coerce(records[i].NumForSale) > coerce(records[j].NumForSale)
	})
	for i := range records {
		records[i].Rank = i + 1
	}
}

func coerce(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// distinct returns the distinct ids in first-encountered order.
func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
