// Package score computes the liquidity score used to rank releases.
//
// The score is a fixed heuristic over marketplace supply and community
// demand signals. Want and for-sale counts are heavy-tailed, so log terms
// compress their scale; the Laplace-smoothed demand ratio is the only
// term that can go negative, penalizing low-demand, high-ownership
// releases.
package score

import "math"

// BlockedSentinel is returned for releases blocked from sale. It is large
// enough (negative) that blocked releases always sort last.
const BlockedSentinel = -1e9

// Input carries the signals the score is computed from. Nil pointers mean
// the upstream never reported the value; they coerce to zero rather than
// being treated as errors.
type Input struct {
	NumForSale      *float64
	BlockedFromSale *bool
	WantCount       *float64
	HaveCount       *float64
}

// Liquidity computes the liquidity score for one release. It is pure and
// deterministic: the same input always produces the same rounded value.
func Liquidity(in Input) float64 {
	if in.BlockedFromSale != nil && *in.BlockedFromSale {
		return BlockedSentinel
	}

	numForSale := coerce(in.NumForSale)
	want := coerce(in.WantCount)
	have := coerce(in.HaveCount)

	// The +1/+10 smoothing damps volatility for low-ownership releases.
	demandRatio := (want + 1) / (have + 10)

	s := 2.2*math.Log1p(want) +
		1.2*math.Log1p(numForSale) +
		3.0*math.Log(demandRatio)

	// Zero current supply means the release cannot be sold immediately,
	// however high the demand.
	if numForSale == 0 {
		s -= 2.0
	}

	return round4(s)
}

func coerce(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// round4 rounds to 4 decimal places, half away from zero.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
