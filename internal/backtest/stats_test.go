package backtest

import (
	"math"
	"testing"
)

func TestCalculateStats_Empty(t *testing.T) {
	stats := CalculateStats(nil, TradingDaysPerYear)
	if stats.AnnReturn != 0 || stats.Sharpe != 0 {
		t.Error("empty input should produce zero stats")
	}
}

func TestCalculateStats_FlatSeries(t *testing.T) {
	ret := make([]float64, 100)
	stats := CalculateStats(ret, TradingDaysPerYear)

	if stats.AnnReturn != 0 {
		t.Errorf("AnnReturn = %f, want 0", stats.AnnReturn)
	}
	if stats.AnnVol != 0 {
		t.Errorf("AnnVol = %f, want 0", stats.AnnVol)
	}
	if stats.Sharpe != 0 {
		t.Errorf("Sharpe = %f, want 0 when vol is 0", stats.Sharpe)
	}
	if stats.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %f, want 0", stats.MaxDrawdown)
	}
}

func TestCalculateStats_AnnReturn(t *testing.T) {
	// One year of a constant daily return compounds to the annual rate
	daily := 0.001
	ret := make([]float64, TradingDaysPerYear)
	for i := range ret {
		ret[i] = daily
	}

	stats := CalculateStats(ret, TradingDaysPerYear)
	want := math.Pow(1+daily, TradingDaysPerYear) - 1
	if math.Abs(stats.AnnReturn-want) > 1e-9 {
		t.Errorf("AnnReturn = %f, want %f", stats.AnnReturn, want)
	}
}

func TestDrawdownSeries(t *testing.T) {
	// +10%, -20%, +5%: trough sits 20% below the peak after day 1
	ret := []float64{0.10, -0.20, 0.05}
	dd := DrawdownSeries(ret)

	if dd[0] != 0 {
		t.Errorf("dd[0] = %f, want 0 at a fresh peak", dd[0])
	}
	if math.Abs(dd[1]-0.20) > 1e-12 {
		t.Errorf("dd[1] = %f, want 0.20", dd[1])
	}
	if dd[2] >= dd[1] {
		t.Errorf("dd[2] = %f, should recover from %f", dd[2], dd[1])
	}
}

func TestMaxDrawdown(t *testing.T) {
	ret := []float64{0.10, 0.05, -0.20, 0.10}
	stats := CalculateStats(ret, TradingDaysPerYear)

	if stats.MaxDrawdown < 0.19 || stats.MaxDrawdown > 0.21 {
		t.Errorf("MaxDrawdown = %f, want about 0.20", stats.MaxDrawdown)
	}
}

func TestRollingSharpe(t *testing.T) {
	ret := []float64{0.01, -0.01, 0.02, 0.01, -0.02, 0.01}
	rs := RollingSharpe(ret, 3)

	if len(rs) != len(ret) {
		t.Fatalf("len = %d, want %d", len(rs), len(ret))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(rs[i]) {
			t.Errorf("rs[%d] = %f, want NaN during warm-up", i, rs[i])
		}
	}
	for i := 2; i < len(rs); i++ {
		if math.IsNaN(rs[i]) {
			t.Errorf("rs[%d] is NaN, want a value", i)
		}
	}
}

func TestRollingSharpe_ZeroDispersion(t *testing.T) {
	ret := []float64{0.01, 0.01, 0.01, 0.01}
	rs := RollingSharpe(ret, 3)
	for i := 2; i < len(rs); i++ {
		if !math.IsNaN(rs[i]) {
			t.Errorf("rs[%d] = %f, want NaN for zero dispersion", i, rs[i])
		}
	}
}
