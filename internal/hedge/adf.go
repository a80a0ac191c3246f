package hedge

import (
	"fmt"
	"math"

	"github.com/newthinker/statarb/internal/core"
)

// ADFPValue runs an augmented Dickey-Fuller test with a constant term
// on the series and returns the p-value for the null of a unit root.
// The lag order is chosen by AIC up to the Schwert bound; the p-value
// uses the MacKinnon (1994) regression-surface approximation.
func ADFPValue(series []float64) (float64, error) {
	if len(series) < 10 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 10 observations for ADF test, got %d", len(series)))
	}

	nobs := len(series) - 1
	maxLag := int(math.Floor(12 * math.Pow(float64(nobs)/100, 0.25)))
	// Keep enough residual sample for the widest regression.
	if limit := nobs/2 - 2; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	// Select the lag on a fixed sample so AIC values are comparable.
	bestLag := 0
	bestAIC := math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		_, _, aic, err := adfRegression(series, lag, maxLag)
		if err != nil {
			continue
		}
		if aic < bestAIC {
			bestAIC = aic
			bestLag = lag
		}
	}

	// Refit with the chosen lag on the longest usable sample.
	gamma, se, _, err := adfRegression(series, bestLag, bestLag)
	if err != nil {
		return 0, err
	}
	if se == 0 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("degenerate ADF regression"))
	}

	return mackinnonP(gamma / se), nil
}

// adfRegression fits dy_t = alpha + gamma*y_{t-1} + sum(d_i*dy_{t-i})
// starting the sample at startLag+1 differences. Returns the gamma
// estimate, its standard error, and the fit's AIC.
func adfRegression(series []float64, lag, startLag int) (gamma, se, aic float64, err error) {
	diffs := make([]float64, len(series)-1)
	for i := range diffs {
		diffs[i] = series[i+1] - series[i]
	}

	// Row t of the design uses y at index t and lagged differences.
	start := startLag
	n := len(diffs) - start
	k := 2 + lag
	if n <= k {
		return 0, 0, 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("not enough observations for lag %d", lag))
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		t := start + i
		row := make([]float64, k)
		row[0] = 1
		row[1] = series[t]
		for j := 1; j <= lag; j++ {
			row[1+j] = diffs[t-j]
		}
		x[i] = row
		y[i] = diffs[t]
	}

	coef, covDiag, ssr, err := olsFit(x, y)
	if err != nil {
		return 0, 0, 0, err
	}

	sigma2 := ssr / float64(n-k)
	gamma = coef[1]
	se = math.Sqrt(sigma2 * covDiag[1])
	aic = float64(n)*math.Log(ssr/float64(n)) + 2*float64(k)
	return gamma, se, aic, nil
}

// olsFit solves the normal equations by Gaussian elimination and
// returns coefficients, the diagonal of (X'X)^-1, and the residual
// sum of squares.
func olsFit(x [][]float64, y []float64) ([]float64, []float64, float64, error) {
	n := len(x)
	k := len(x[0])

	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for r := 0; r < n; r++ {
		for i := 0; i < k; i++ {
			xty[i] += x[r][i] * y[r]
			for j := 0; j < k; j++ {
				xtx[i][j] += x[r][i] * x[r][j]
			}
		}
	}

	// Augment with X'y and the identity to recover (X'X)^-1 alongside
	// the coefficients.
	aug := make([][]float64, k)
	for i := 0; i < k; i++ {
		aug[i] = make([]float64, k+1+k)
		copy(aug[i], xtx[i])
		aug[i][k] = xty[i]
		aug[i][k+1+i] = 1
	}

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, nil, 0, core.WrapError(core.ErrInsufficientData,
				fmt.Errorf("singular design matrix"))
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		p := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			for j := range aug[r] {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	coef := make([]float64, k)
	covDiag := make([]float64, k)
	for i := 0; i < k; i++ {
		coef[i] = aug[i][k]
		covDiag[i] = aug[i][k+1+i]
	}

	var ssr float64
	for r := 0; r < n; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += coef[i] * x[r][i]
		}
		resid := y[r] - pred
		ssr += resid * resid
	}
	return coef, covDiag, ssr, nil
}

// MacKinnon (1994) approximate asymptotic p-value for the ADF tau
// statistic with a constant and no trend.
const (
	tauMax  = 2.74
	tauMin  = -18.83
	tauStar = -1.61
)

var (
	tauSmallP = []float64{2.1659, 1.4412, 0.038269}
	tauLargeP = []float64{1.7339, 0.93202, -0.05554, -0.00616}
)

func mackinnonP(tau float64) float64 {
	if tau > tauMax {
		return 1.0
	}
	if tau < tauMin {
		return 0.0
	}
	coefs := tauLargeP
	if tau <= tauStar {
		coefs = tauSmallP
	}
	var poly float64
	for i := len(coefs) - 1; i >= 0; i-- {
		poly = poly*tau + coefs[i]
	}
	return normCDF(poly)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
