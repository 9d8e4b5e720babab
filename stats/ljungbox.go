package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests for autocorrelation in residuals up to lag h.
// H0: no autocorrelation. fitdf is the number of estimated parameters
// subtracted from the degrees of freedom. It returns nil for fewer than 10
// values or constant input.
func LjungBox(residuals []float64, lags, fitdf int) *LjungBoxResult {
	n := len(residuals)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(residuals, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := max(lags-fitdf, 1)
	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DefaultLjungBoxLags is min(2*period, n/5) with a floor of 1, the usual
// choice for seasonal data.
func DefaultLjungBoxLags(n, period int) int {
	return max(min(2*period, n/5), 1)
}

// DurbinWatsonResult represents the result of a Durbin-Watson test.
// Statistic near 2 means no first-order autocorrelation; below 2 positive,
// above 2 negative. Rho is the implied lag-1 correlation, 1 - d/2.
type DurbinWatsonResult struct {
	Statistic float64
	Rho       float64
}

// DurbinWatson calculates the Durbin-Watson statistic for first-order autocorrelation.
func DurbinWatson(residuals []float64) *DurbinWatsonResult {
	n := len(residuals)
	if n < 2 {
		return nil
	}

	numerator := 0.0
	denominator := residuals[0] * residuals[0]
	for i := 1; i < n; i++ {
		diff := residuals[i] - residuals[i-1]
		numerator += diff * diff
		denominator += residuals[i] * residuals[i]
	}
	if denominator == 0 {
		return nil
	}

	d := numerator / denominator
	return &DurbinWatsonResult{Statistic: d, Rho: 1 - d/2}
}
