package backtest

import (
	"fmt"
	"math"

	"github.com/newthinker/statarb/internal/core"
	"github.com/newthinker/statarb/internal/indicator"
	"github.com/newthinker/statarb/internal/strategy"
)

// Params holds the full backtest configuration for one pair.
type Params struct {
	Lookback          int
	ZIn               float64
	ZOut              float64
	Stop              float64
	TakeProfit        float64
	TakeProfitEnabled bool
	ConfirmDelta      float64
	CostBps           float64
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		Lookback: 60,
		ZIn:      2.0,
		ZOut:     0.5,
		Stop:     3.5,
		CostBps:  1.0,
	}
}

// Validate checks the configuration before any processing happens.
func (p Params) Validate() error {
	if p.Lookback <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("lookback must be positive, got %d", p.Lookback))
	}
	if p.CostBps < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("cost_bps must be non-negative, got %g", p.CostBps))
	}
	return p.rules().Validate()
}

func (p Params) rules() strategy.Rules {
	return strategy.Rules{
		ZIn:               p.ZIn,
		ZOut:              p.ZOut,
		Stop:              p.Stop,
		TakeProfit:        p.TakeProfit,
		TakeProfitEnabled: p.TakeProfitEnabled,
		ConfirmDelta:      p.ConfirmDelta,
	}
}

// Run backtests the pair on the shared timestamp index of the two price
// series. It builds the spread B - beta*A, standardizes it, generates
// the position trajectory and computes daily net returns normalized by
// the prior day's gross two-leg exposure.
//
// The function is pure: identical inputs produce identical outputs, and
// no NaN from the warm-up window ever reaches Ret, Equity or Turnover.
func Run(pricesA, pricesB core.Series, beta float64, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("beta must be finite, got %g", beta))
	}

	pxA, pxB := core.Align(pricesA, pricesB)
	n := pxA.Len()
	if n < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 2 overlapping timestamps, got %d", n))
	}

	spread := make([]float64, n)
	for i := 0; i < n; i++ {
		spread[i] = pxB.Values[i] - beta*pxA.Values[i]
	}

	z, err := indicator.ZScore(spread, p.Lookback)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	traj, err := strategy.Generate(z, beta, p.rules())
	if err != nil {
		return nil, err
	}

	result := &Result{
		SymbolA:  pricesA.Symbol,
		SymbolB:  pricesB.Symbol,
		Beta:     beta,
		Times:    pxA.Times,
		Z:        z,
		YPos:     traj.YPos,
		XPos:     traj.XPos,
		Events:   traj.Events,
		Ret:      make([]float64, n),
		Equity:   make([]float64, n),
		Turnover: make([]float64, n),
	}

	costRate := p.CostBps / 1e4
	equity := 1.0

	for t := 0; t < n; t++ {
		if t == 0 {
			// No holdings, no price change: day 0 is always flat.
			equity *= 1.0
			result.Equity[t] = equity
			continue
		}

		// Holdings realized with a one-day execution lag: the quantity
		// held through day t is the position decided at day t-1.
		qB := traj.YPos[t-1]
		qA := -traj.XPos[t-1]

		dB := pxB.Values[t] - pxB.Values[t-1]
		dA := pxA.Values[t] - pxA.Values[t-1]
		pnl := qB*dB + qA*dA

		// Prior-day gross two-leg exposure is the capital base. When it
		// is exactly zero the return is zero, never NaN.
		grossPrev := math.Abs(qB)*pxB.Values[t-1] + math.Abs(qA)*pxA.Values[t-1]

		tradedNotional := math.Abs(traj.YPos[t]-traj.YPos[t-1])*pxB.Values[t] +
			math.Abs(traj.XPos[t]-traj.XPos[t-1])*pxA.Values[t]

		var ret, turnover float64
		if grossPrev > 0 {
			grossRet := pnl / grossPrev
			cost := costRate * tradedNotional / grossPrev
			ret = grossRet - cost
			turnover = tradedNotional / grossPrev
		}

		result.Ret[t] = ret
		result.Turnover[t] = turnover
		equity *= 1 + ret
		result.Equity[t] = equity
	}

	result.Stats = CalculateStats(result.Ret, TradingDaysPerYear)
	return result, nil
}
