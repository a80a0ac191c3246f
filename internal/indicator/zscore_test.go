package indicator

import (
	"math"
	"testing"
)

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	result := RollingMean(values, 3)

	if len(result) != len(values) {
		t.Fatalf("len = %d, want %d", len(result), len(values))
	}
	if !math.IsNaN(result[0]) || !math.IsNaN(result[1]) {
		t.Error("warm-up positions should be NaN")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(result[i+2]-w) > 1e-12 {
			t.Errorf("result[%d] = %f, want %f", i+2, result[i+2], w)
		}
	}
}

func TestRollingStd_Sample(t *testing.T) {
	// Sample std of {1,2,3} is 1 exactly
	values := []float64{1, 2, 3}
	result := RollingStd(values, 3)

	if math.Abs(result[2]-1.0) > 1e-12 {
		t.Errorf("std = %f, want 1.0", result[2])
	}
}

func TestZScore(t *testing.T) {
	values := []float64{1, 2, 3, 4, 10}
	z, err := ZScore(values, 3)
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}

	if len(z) != len(values) {
		t.Fatalf("len = %d, want %d", len(z), len(values))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(z[i]) {
			t.Errorf("z[%d] = %f, want NaN during warm-up", i, z[i])
		}
	}

	// Window {2,3,4}: mean 3, std 1, z = (4-3)/1 = 1
	if math.Abs(z[3]-1.0) > 1e-12 {
		t.Errorf("z[3] = %f, want 1.0", z[3])
	}

	// Window {3,4,10}: mean 17/3, sample std sqrt(14.333..)
	mean := 17.0 / 3.0
	variance := ((3-mean)*(3-mean) + (4-mean)*(4-mean) + (10-mean)*(10-mean)) / 2
	want := (10 - mean) / math.Sqrt(variance)
	if math.Abs(z[4]-want) > 1e-12 {
		t.Errorf("z[4] = %f, want %f", z[4], want)
	}
}

func TestZScore_ZeroStd(t *testing.T) {
	// Constant window has zero dispersion; z must be NaN, not Inf
	values := []float64{5, 5, 5, 5}
	z, err := ZScore(values, 3)
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	for i := 2; i < len(z); i++ {
		if !math.IsNaN(z[i]) {
			t.Errorf("z[%d] = %f, want NaN for zero std", i, z[i])
		}
		if math.IsInf(z[i], 0) {
			t.Errorf("z[%d] is infinite", i)
		}
	}
}

func TestZScore_InvalidLookback(t *testing.T) {
	if _, err := ZScore([]float64{1, 2, 3}, 0); err == nil {
		t.Error("lookback 0 should be rejected")
	}
	if _, err := ZScore([]float64{1, 2, 3}, -5); err == nil {
		t.Error("negative lookback should be rejected")
	}
}

func TestZScore_ShortSeries(t *testing.T) {
	z, err := ZScore([]float64{1, 2}, 5)
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	for i, v := range z {
		if !math.IsNaN(v) {
			t.Errorf("z[%d] = %f, want NaN when window never fills", i, v)
		}
	}
}
