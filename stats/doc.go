// Package stats provides the numerical core shared by the decomposition and
// regression packages: least squares, residual diagnostics and unit-root
// testing.
//
// # Least Squares
//
// LeastSquares fits y = X*b with a Householder QR factorization and reports
// rank deficiency instead of returning unstable estimates:
//
//	fit, err := stats.LeastSquares(x, y)
//	var rank *stats.RankError
//	if errors.As(err, &rank) {
//	    // column rank.Column duplicates earlier columns
//	}
//	fmt.Println(fit.Coefficients, fit.StdErrors, fit.RSS)
//
// # Residual Diagnostics
//
//	// Ljung-Box test for autocorrelation, H0: no autocorrelation
//	lb := stats.LjungBox(residuals, 8, 0)
//
//	// Durbin-Watson statistic, near 2 for uncorrelated residuals
//	dw := stats.DurbinWatson(residuals)
//
//	// Autocorrelation with 95% bounds
//	acf := stats.ACFWithConfidence(residuals, 8)
//	lags := acf.Significant()
//
// # Unit Roots
//
// ADF runs the Augmented Dickey-Fuller test with a constant. Applied to
// regression residuals it flags fits between trending series that share no
// long-run relation:
//
//	adf := stats.ADF(residuals, 0)
//	if adf != nil && !adf.IsStationary {
//	    // residuals look like a random walk
//	}
//
// # Information Criteria
//
//	ic := stats.CalculateIC(logLik, nObs, nParams)
//	fmt.Println(ic.AIC, ic.AICc, ic.BIC)
package stats
