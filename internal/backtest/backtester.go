package backtest

import (
	"context"
	"time"

	"github.com/newthinker/statarb/internal/core"
	"github.com/newthinker/statarb/internal/hedge"
)

// PairProvider defines the interface for fetching historical daily
// prices. Fetching, gap-filling and caching live behind it; the engine
// only sees clean aligned series.
type PairProvider interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error)
}

// Request describes one pair backtest. Beta is used as-is when
// BetaKnown is set; otherwise it is estimated by OLS over the shared
// window.
type Request struct {
	SymbolA   string
	SymbolB   string
	Start     time.Time
	End       time.Time
	Beta      float64
	BetaKnown bool
	Params    Params
}

// Backtester runs pair backtests against historical data.
type Backtester struct {
	provider PairProvider
}

// New creates a new Backtester with the given price provider.
func New(provider PairProvider) *Backtester {
	return &Backtester{provider: provider}
}

// RunPair fetches both legs, resolves the hedge ratio and runs the
// engine.
func (b *Backtester) RunPair(ctx context.Context, req Request) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	pxA, pxB, err := b.fetchPair(ctx, req.SymbolA, req.SymbolB, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	beta := req.Beta
	if !req.BetaKnown {
		alignedA, alignedB := core.Align(pxA, pxB)
		beta, err = hedge.Ratio(alignedB.Values, alignedA.Values)
		if err != nil {
			return nil, err
		}
	}

	return Run(pxA, pxB, beta, req.Params)
}

// PairDiagnostics holds the tradeability screen for a pair.
type PairDiagnostics struct {
	SymbolA      string  `json:"symbol_a"`
	SymbolB      string  `json:"symbol_b"`
	Observations int     `json:"observations"`
	Beta         float64 `json:"beta"`
	ADFPValue    float64 `json:"adf_p_value"`
	HalfLife     float64 `json:"half_life_days"`
}

// Diagnose estimates the hedge ratio and spread mean-reversion
// statistics without running a backtest.
func (b *Backtester) Diagnose(ctx context.Context, symbolA, symbolB string, start, end time.Time) (*PairDiagnostics, error) {
	pxA, pxB, err := b.fetchPair(ctx, symbolA, symbolB, start, end)
	if err != nil {
		return nil, err
	}

	alignedA, alignedB := core.Align(pxA, pxB)
	beta, err := hedge.Ratio(alignedB.Values, alignedA.Values)
	if err != nil {
		return nil, err
	}

	spread := make([]float64, alignedA.Len())
	for i := range spread {
		spread[i] = alignedB.Values[i] - beta*alignedA.Values[i]
	}

	pValue, err := hedge.ADFPValue(spread)
	if err != nil {
		return nil, err
	}
	halfLife, err := hedge.HalfLife(spread)
	if err != nil {
		return nil, err
	}

	return &PairDiagnostics{
		SymbolA:      symbolA,
		SymbolB:      symbolB,
		Observations: alignedA.Len(),
		Beta:         beta,
		ADFPValue:    pValue,
		HalfLife:     halfLife,
	}, nil
}

func (b *Backtester) fetchPair(ctx context.Context, symbolA, symbolB string, start, end time.Time) (core.Series, core.Series, error) {
	pxA, err := b.provider.FetchDaily(ctx, symbolA, start, end)
	if err != nil {
		return core.Series{}, core.Series{}, core.WrapError(core.ErrCollectorFailed, err)
	}
	pxB, err := b.provider.FetchDaily(ctx, symbolB, start, end)
	if err != nil {
		return core.Series{}, core.Series{}, core.WrapError(core.ErrCollectorFailed, err)
	}
	if pxA.Len() == 0 || pxB.Len() == 0 {
		return core.Series{}, core.Series{}, core.ErrNoData
	}
	return pxA, pxB, nil
}
