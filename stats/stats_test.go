package stats

import (
	"math"
	"math/rand"
	"testing"
)

func ar1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	return values
}

func TestACF(t *testing.T) {
	values := ar1(200, 0.8, 1)
	acf := ACF(values, 10)
	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if len(acf) != 11 {
		t.Fatalf("Expected 11 lags, got %d", len(acf))
	}
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
	if acf[1] < 0.5 {
		t.Errorf("Expected strong lag-1 autocorrelation, got %f", acf[1])
	}

	if ACF([]float64{3, 3, 3, 3}, 2) != nil {
		t.Error("Expected nil ACF for constant input")
	}
}

func TestACFWithConfidence(t *testing.T) {
	values := ar1(100, 0.9, 2)
	result := ACFWithConfidence(values, 8)
	if result == nil {
		t.Fatal("ACFWithConfidence returned nil")
	}
	if math.Abs(result.ConfBounds-0.196) > 1e-10 {
		t.Errorf("Expected bounds 0.196, got %f", result.ConfBounds)
	}
	significant := result.Significant()
	if len(significant) == 0 || significant[0] != 1 {
		t.Errorf("Expected lag 1 to be significant, got %v", significant)
	}
}

func TestLjungBox(t *testing.T) {
	values := ar1(120, 0.9, 3)
	result := LjungBox(values, 8, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.PValue > 0.01 {
		t.Errorf("Expected autocorrelation to be detected, p=%f", result.PValue)
	}

	acf := ACF(values, 8)
	n := float64(len(values))
	q := 0.0
	for k := 1; k <= 8; k++ {
		q += acf[k] * acf[k] / (n - float64(k))
	}
	q *= n * (n + 2)
	if math.Abs(result.Statistic-q) > 1e-9 {
		t.Errorf("Expected Q=%f, got %f", q, result.Statistic)
	}

	adjusted := LjungBox(values, 8, 3)
	if adjusted.DOF != 5 {
		t.Errorf("Expected 5 degrees of freedom, got %d", adjusted.DOF)
	}
	if adjusted.PValue > result.PValue {
		t.Errorf("Fewer degrees of freedom should not raise the p-value")
	}

	if LjungBox(values[:5], 3, 0) != nil {
		t.Error("Expected nil for short input")
	}
}

func TestDefaultLjungBoxLags(t *testing.T) {
	tests := []struct {
		n, period, want int
	}{
		{100, 4, 8},
		{20, 4, 4},
		{3, 4, 1},
	}
	for _, tt := range tests {
		if got := DefaultLjungBoxLags(tt.n, tt.period); got != tt.want {
			t.Errorf("DefaultLjungBoxLags(%d, %d) = %d, want %d", tt.n, tt.period, got, tt.want)
		}
	}
}

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		expected  float64
	}{
		{"negative autocorrelation", []float64{1, -1, 1, -1, 1, -1, 1, -1}, 3.5},
		{"positive autocorrelation", []float64{1, 1, 1, 1, -1, -1, -1, -1}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DurbinWatson(tt.residuals)
			if result == nil {
				t.Fatal("DurbinWatson returned nil")
			}
			if math.Abs(result.Statistic-tt.expected) > 1e-12 {
				t.Errorf("Expected %f, got %f", tt.expected, result.Statistic)
			}
			if math.Abs(result.Rho-(1-tt.expected/2)) > 1e-12 {
				t.Errorf("Unexpected rho %f", result.Rho)
			}
		})
	}

	if DurbinWatson([]float64{0, 0, 0}) != nil {
		t.Error("Expected nil for all-zero residuals")
	}
	if DurbinWatson([]float64{1}) != nil {
		t.Error("Expected nil for a single residual")
	}
}

func TestADF(t *testing.T) {
	stationary := ar1(200, 0.2, 4)
	result := ADF(stationary, 1)
	if result == nil {
		t.Fatal("ADF returned nil for stationary data")
	}
	if !result.IsStationary || result.Statistic > result.CriticalVals["1%"] {
		t.Errorf("Expected unit root to be rejected, stat=%f p=%f", result.Statistic, result.PValue)
	}
	if result.Lags != 1 || result.NObs != 198 {
		t.Errorf("Expected 1 lag and 198 observations, got %d and %d", result.Lags, result.NObs)
	}

	walk := make([]float64, 200)
	steps := ar1(200, 0, 5)
	for i := 1; i < len(walk); i++ {
		walk[i] = walk[i-1] + steps[i]
	}
	result = ADF(walk, 0)
	if result == nil {
		t.Fatal("ADF returned nil for a random walk")
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Errorf("p-value out of range: %f", result.PValue)
	}

	if ADF(stationary[:8], 0) != nil {
		t.Error("Expected nil for short input")
	}
}

func TestMackinnonPValue(t *testing.T) {
	tests := []struct {
		stat float64
		want float64
	}{
		{-3.43, 0.01},
		{-2.86, 0.05},
		{-2.57, 0.10},
	}
	for _, tt := range tests {
		if got := mackinnonPValue(tt.stat); math.Abs(got-tt.want) > 0.003 {
			t.Errorf("mackinnonPValue(%f) = %f, want about %f", tt.stat, got, tt.want)
		}
	}

	prev := 0.0
	for s := -6.0; s <= 2.0; s += 0.25 {
		p := mackinnonPValue(s)
		if p < prev {
			t.Errorf("p-value should increase with the statistic, %f < %f at %f", p, prev, s)
		}
		prev = p
	}

	if mackinnonPValue(-25) != 0 || mackinnonPValue(5) != 1 {
		t.Error("Expected clamped p-values outside the response surface")
	}
}
