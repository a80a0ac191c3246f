package hedge

import (
	"math"
	"testing"
)

// lcg is a small deterministic generator so tests never depend on the
// global rand state.
type lcg struct{ state uint64 }

func (g *lcg) next() float64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return float64(g.state>>11) / float64(1<<53)
}

// normal approximates a standard normal draw via Irwin-Hall.
func (g *lcg) normal() float64 {
	var sum float64
	for i := 0; i < 12; i++ {
		sum += g.next()
	}
	return sum - 6
}

func TestRatio_ExactProportionality(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	beta, err := Ratio(y, x)
	if err != nil {
		t.Fatalf("Ratio() error = %v", err)
	}
	if math.Abs(beta-2.0) > 1e-12 {
		t.Errorf("beta = %f, want 2.0", beta)
	}
}

func TestRatio_Noisy(t *testing.T) {
	g := &lcg{state: 7}
	n := 500
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = 100 + 10*g.next()
		y[i] = 1.5*x[i] + 0.5*g.normal()
	}

	beta, err := Ratio(y, x)
	if err != nil {
		t.Fatalf("Ratio() error = %v", err)
	}
	if math.Abs(beta-1.5) > 0.01 {
		t.Errorf("beta = %f, want close to 1.5", beta)
	}
}

func TestRatio_Errors(t *testing.T) {
	if _, err := Ratio([]float64{1}, []float64{1}); err == nil {
		t.Error("single observation should be rejected")
	}
	if _, err := Ratio([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("mismatched lengths should be rejected")
	}
	if _, err := Ratio([]float64{1, 2}, []float64{0, 0}); err == nil {
		t.Error("constant-zero regressor should be rejected")
	}
}

func TestHalfLife_GeometricDecay(t *testing.T) {
	// s_{t+1} = 0.5 * s_t exactly: half-life is 1 bar by construction
	n := 30
	s := make([]float64, n)
	s[0] = 1
	for i := 1; i < n; i++ {
		s[i] = 0.5 * s[i-1]
	}

	hl, err := HalfLife(s)
	if err != nil {
		t.Fatalf("HalfLife() error = %v", err)
	}
	if math.Abs(hl-1.0) > 1e-9 {
		t.Errorf("half-life = %f, want 1.0", hl)
	}
}

func TestHalfLife_NoReversion(t *testing.T) {
	// Deterministic trend: no relation between level and change
	s := make([]float64, 30)
	for i := range s {
		s[i] = float64(i)
	}

	hl, err := HalfLife(s)
	if err != nil {
		t.Fatalf("HalfLife() error = %v", err)
	}
	if !math.IsInf(hl, 1) {
		t.Errorf("half-life = %f, want +Inf for non-reverting series", hl)
	}
}

func TestHalfLife_TooShort(t *testing.T) {
	if _, err := HalfLife(make([]float64, 10)); err == nil {
		t.Error("short series should be rejected")
	}
}

func TestADFPValue_Stationary(t *testing.T) {
	// Strongly mean-reverting AR(1): the unit-root null should be
	// rejected decisively.
	g := &lcg{state: 42}
	n := 500
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		s[i] = 0.2*s[i-1] + g.normal()
	}

	p, err := ADFPValue(s)
	if err != nil {
		t.Fatalf("ADFPValue() error = %v", err)
	}
	if p >= 0.05 {
		t.Errorf("p = %f, want < 0.05 for stationary series", p)
	}
}

func TestADFPValue_RandomWalk(t *testing.T) {
	g := &lcg{state: 99}
	n := 500
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		s[i] = s[i-1] + 0.2 + g.normal()
	}

	p, err := ADFPValue(s)
	if err != nil {
		t.Fatalf("ADFPValue() error = %v", err)
	}
	if p < 0.05 {
		t.Errorf("p = %f, want >= 0.05 for a random walk", p)
	}
}

func TestADFPValue_TooShort(t *testing.T) {
	if _, err := ADFPValue(make([]float64, 5)); err == nil {
		t.Error("short series should be rejected")
	}
}

func TestMackinnonP(t *testing.T) {
	// 5% critical value for the constant case is about -2.86
	if p := mackinnonP(-2.86); math.Abs(p-0.05) > 0.01 {
		t.Errorf("p(-2.86) = %f, want about 0.05", p)
	}
	if p := mackinnonP(0); math.Abs(p-0.958) > 0.01 {
		t.Errorf("p(0) = %f, want about 0.958", p)
	}
	if p := mackinnonP(3.0); p != 1.0 {
		t.Errorf("p above upper bound = %f, want 1", p)
	}
	if p := mackinnonP(-20.0); p != 0.0 {
		t.Errorf("p below lower bound = %f, want 0", p)
	}
	if p := mackinnonP(-5.0); p > 0.001 {
		t.Errorf("p(-5) = %f, want near 0", p)
	}
}
