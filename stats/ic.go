package stats

import "math"

// InformationCriteria holds AIC, AICc and BIC for a fitted model.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// AICc calculates the corrected Akaike Information Criterion.
// AICc = AIC + 2k(k+1)/(n-k-1), +Inf when n-k-1 <= 0.
func AICc(aic float64, nObs int, nParams int) float64 {
	k := float64(nParams)
	n := float64(nObs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return aic + 2*k*(k+1)/(n-k-1)
}

// CalculateIC calculates all information criteria from a log-likelihood.
// nParams counts every estimated parameter, including the error variance.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	aic := -2*logLik + 2*k
	return &InformationCriteria{
		AIC:    aic,
		AICc:   AICc(aic, nObs, nParams),
		BIC:    -2*logLik + k*math.Log(float64(nObs)),
		LogLik: logLik,
	}
}
