// internal/api/handler/backtest_test.go
package handler

import (
	"math"
	"testing"

	"github.com/newthinker/statarb/internal/backtest"
)

func fp(v float64) *float64 { return &v }

func TestBacktestRequest_Params(t *testing.T) {
	defaults := backtest.DefaultParams()

	// No overrides: defaults pass through untouched
	req := BacktestRequest{}
	if got := req.params(defaults); got != defaults {
		t.Errorf("empty request changed params: %+v", got)
	}

	// Overrides replace only the supplied fields
	lookback := 90
	req = BacktestRequest{
		Lookback: &lookback,
		ZIn:      fp(2.5),
		CostBps:  fp(0),
	}
	got := req.params(defaults)
	if got.Lookback != 90 || got.ZIn != 2.5 || got.CostBps != 0 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.ZOut != defaults.ZOut || got.Stop != defaults.Stop {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestBacktestRequest_Params_TakeProfitFlag(t *testing.T) {
	defaults := backtest.DefaultParams()

	req := BacktestRequest{TakeProfit: fp(0.3)}
	got := req.params(defaults)
	if !got.TakeProfitEnabled || got.TakeProfit != 0.3 {
		t.Errorf("positive take_profit should enable the rule: %+v", got)
	}

	req = BacktestRequest{TakeProfit: fp(0)}
	got = req.params(defaults)
	if got.TakeProfitEnabled {
		t.Error("zero take_profit should leave the rule disabled")
	}
}

func TestSummarize_WarmupZBecomesNull(t *testing.T) {
	res := &backtest.Result{
		SymbolA: "A",
		SymbolB: "B",
		Beta:    1.5,
		Z:       []float64{math.NaN(), math.NaN(), 0.7},
	}

	out := summarize(res)
	z := out["z"].([]*float64)
	if z[0] != nil || z[1] != nil {
		t.Error("warm-up z should serialize as null")
	}
	if z[2] == nil || *z[2] != 0.7 {
		t.Errorf("z[2] = %v, want 0.7", z[2])
	}
}
