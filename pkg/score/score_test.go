package score

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

func TestLiquidityAllZero(t *testing.T) {
	// demand_ratio = (0+1)/(0+10) = 0.1
	// score = 2.2*ln(1) + 1.2*ln(1) + 3.0*ln(0.1) - 2.0 = -8.907755...
	got := Liquidity(Input{
		NumForSale:      f(0),
		BlockedFromSale: b(false),
		WantCount:       f(0),
		HaveCount:       f(0),
	})
	if got != -8.9078 {
		t.Errorf("Liquidity(all zero) = %v, want -8.9078", got)
	}
}

func TestLiquidityAbsentCoercesToZero(t *testing.T) {
	// Absent fields must score identically to explicit zeroes.
	got := Liquidity(Input{})
	if got != -8.9078 {
		t.Errorf("Liquidity(absent) = %v, want -8.9078", got)
	}
}

func TestLiquidityBlockedSentinel(t *testing.T) {
	// Blocked releases hit the sentinel regardless of other signals.
	got := Liquidity(Input{
		NumForSale:      f(500),
		BlockedFromSale: b(true),
		WantCount:       f(10000),
		HaveCount:       f(1),
	})
	if got != BlockedSentinel {
		t.Errorf("Liquidity(blocked) = %v, want %v", got, BlockedSentinel)
	}
}

func TestLiquidityBlockedFalseScoresNormally(t *testing.T) {
	got := Liquidity(Input{BlockedFromSale: b(false)})
	if got == BlockedSentinel {
		t.Error("blocked=false must not hit the sentinel")
	}
}

func TestLiquidityKnownVector(t *testing.T) {
	// want=100, have=50, for sale=10:
	// demand = 101/60
	// s = 2.2*ln(101) + 1.2*ln(11) + 3.0*ln(101/60)
	want100 := 2.2*math.Log1p(100) + 1.2*math.Log1p(10) + 3.0*math.Log(101.0/60.0)
	want100 = math.Round(want100*10000) / 10000

	got := Liquidity(Input{
		NumForSale: f(10),
		WantCount:  f(100),
		HaveCount:  f(50),
	})
	if got != want100 {
		t.Errorf("Liquidity = %v, want %v", got, want100)
	}
}

func TestLiquidityZeroSupplyPenalty(t *testing.T) {
	with := Liquidity(Input{NumForSale: f(1), WantCount: f(50), HaveCount: f(20)})
	without := Liquidity(Input{NumForSale: f(0), WantCount: f(50), HaveCount: f(20)})

	// Dropping from 1 to 0 listed removes the supply term and adds the
	// -2.0 penalty.
	expected := with - 1.2*math.Log1p(1) - 2.0
	expected = math.Round(expected*10000) / 10000
	if without != expected {
		t.Errorf("zero-supply score = %v, want %v", without, expected)
	}
}

func TestLiquidityDeterministic(t *testing.T) {
	in := Input{NumForSale: f(7), WantCount: f(321), HaveCount: f(123)}
	first := Liquidity(in)
	for i := 0; i < 100; i++ {
		if got := Liquidity(in); got != first {
			t.Fatalf("Liquidity not deterministic: %v != %v", got, first)
		}
	}
}

func TestLiquidityRounding(t *testing.T) {
	got := Liquidity(Input{NumForSale: f(3), WantCount: f(17), HaveCount: f(5)})
	// 4 decimal places: scaling by 10^4 must give an integer.
	scaled := got * 10000
	if scaled != math.Trunc(scaled) {
		t.Errorf("score %v not rounded to 4 decimals", got)
	}
}
