package backtest

import (
	"math"

	"github.com/newthinker/statarb/internal/indicator"
)

// TradingDaysPerYear is the annualization frequency for daily bars.
const TradingDaysPerYear = 252

// Stats holds annualized performance statistics for a return series.
type Stats struct {
	AnnReturn   float64 // Annualized compound return
	AnnVol      float64 // Annualized volatility (sample std)
	Sharpe      float64 // Risk-adjusted return, zero risk-free rate
	MaxDrawdown float64 // Largest peak-to-trough decline, positive magnitude
}

// CalculateStats computes performance statistics from a daily return
// series. freq is the number of bars per year.
func CalculateStats(ret []float64, freq int) Stats {
	if len(ret) == 0 {
		return Stats{}
	}

	growth := 1.0
	for _, r := range ret {
		growth *= 1 + r
	}
	annReturn := math.Pow(growth, float64(freq)/float64(len(ret))) - 1

	annVol := stdDev(ret) * math.Sqrt(float64(freq))

	var sharpe float64
	if annVol != 0 {
		sharpe = annReturn / annVol
	}

	return Stats{
		AnnReturn:   annReturn,
		AnnVol:      annVol,
		Sharpe:      sharpe,
		MaxDrawdown: maxDrawdown(ret),
	}
}

// DrawdownSeries returns the running decline from the equity peak,
// one value per return observation, each in [0, 1].
func DrawdownSeries(ret []float64) []float64 {
	dd := make([]float64, len(ret))
	equity := 1.0
	peak := 1.0
	for i, r := range ret {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		dd[i] = (peak - equity) / peak
	}
	return dd
}

// RollingSharpe computes the annualized Sharpe over a trailing window,
// NaN during the warm-up and wherever the window's dispersion is zero.
func RollingSharpe(ret []float64, window int) []float64 {
	mean := indicator.RollingMean(ret, window)
	std := indicator.RollingStd(ret, window)

	result := make([]float64, len(ret))
	for i := range ret {
		if mean == nil || std == nil || math.IsNaN(std[i]) || std[i] == 0 {
			result[i] = math.NaN()
			continue
		}
		result[i] = mean[i] / std[i] * math.Sqrt(TradingDaysPerYear)
	}
	return result
}

// maxDrawdown finds the largest peak-to-trough decline of the
// compounded equity curve.
func maxDrawdown(ret []float64) float64 {
	var maxDD float64
	for _, dd := range DrawdownSeries(ret) {
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// stdDev is the sample standard deviation (n-1 divisor).
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
