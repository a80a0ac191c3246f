package indicator

import (
	"fmt"
	"math"
)

// RollingMean calculates the trailing mean over the most recent window
// observations, including the current one.
// Returns a slice the same length as the input; positions whose trailing
// window is incomplete hold NaN.
func RollingMean(values []float64, window int) []float64 {
	if window <= 0 {
		return nil
	}

	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		result[i] = sum / float64(window)
	}
	return result
}

// RollingStd calculates the trailing sample standard deviation (n-1
// divisor) over the most recent window observations.
// Returns a slice the same length as the input with NaN during warm-up.
func RollingStd(values []float64, window int) []float64 {
	if window <= 1 {
		return nil
	}

	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)

		var variance float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		result[i] = math.Sqrt(variance / float64(window-1))
	}
	return result
}

// ZScore standardizes a series against its trailing window:
// z = (v - rollingMean) / rollingStd.
// The first window-1 positions are NaN, as is any position whose rolling
// standard deviation is exactly zero; NaN here means "no value" and must
// never be collapsed to zero by callers.
func ZScore(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("lookback must be positive, got %d", window)
	}

	mean := RollingMean(values, window)
	std := RollingStd(values, window)

	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 || std == nil || std[i] == 0 || math.IsNaN(std[i]) {
			result[i] = math.NaN()
			continue
		}
		result[i] = (values[i] - mean[i]) / std[i]
	}
	return result, nil
}
