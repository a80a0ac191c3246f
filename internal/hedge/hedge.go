// Package hedge estimates the hedge ratio and mean-reversion
// diagnostics used to size and screen a pair before backtesting.
package hedge

import (
	"fmt"
	"math"

	"github.com/newthinker/statarb/internal/core"
)

// Ratio estimates the static hedge ratio (beta) of y on x using OLS
// without an intercept: y_t = beta*x_t + e_t.
func Ratio(y, x []float64) (float64, error) {
	if len(y) != len(x) {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("series lengths differ: %d vs %d", len(y), len(x)))
	}
	if len(y) < 2 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 2 observations to estimate hedge ratio, got %d", len(y)))
	}

	var sxy, sxx float64
	for i := range x {
		sxy += x[i] * y[i]
		sxx += x[i] * x[i]
	}
	if sxx == 0 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("independent leg has no variation"))
	}
	return sxy / sxx, nil
}

// HalfLife estimates the half-life of mean reversion in days from an
// AR(1) approximation: dS_t = c + phi*S_{t-1} + e_t, with reversion
// speed kappa = -log(1+phi). Returns +Inf when no reversion is found.
func HalfLife(spread []float64) (float64, error) {
	if len(spread) < 20 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 20 observations to estimate half-life, got %d", len(spread)))
	}

	n := len(spread) - 1
	ds := make([]float64, n)
	lag := make([]float64, n)
	for i := 0; i < n; i++ {
		ds[i] = spread[i+1] - spread[i]
		lag[i] = spread[i]
	}

	phi, _, err := slopeIntercept(lag, ds)
	if err != nil {
		return 0, err
	}

	kappa := -math.Log1p(phi)
	if kappa <= 0 {
		return math.Inf(1), nil
	}
	return math.Ln2 / kappa, nil
}

// slopeIntercept fits y = a + b*x by least squares and returns (b, a).
func slopeIntercept(x, y []float64) (float64, float64, error) {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx := sx / n
	my := sy / n

	var sxx, sxy float64
	for i := range x {
		sxx += (x[i] - mx) * (x[i] - mx)
		sxy += (x[i] - mx) * (y[i] - my)
	}
	if sxx == 0 {
		return 0, 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("regressor has no variation"))
	}
	b := sxy / sxx
	return b, my - b*mx, nil
}
