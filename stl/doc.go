// Package stl implements Seasonal-Trend decomposition using Loess (STL) and
// the component adjustments built on it.
//
// # Decomposition
//
// Split a quarterly series into seasonal, trend and remainder components:
//
//	res, err := stl.Decompose(series, 4, nil) // periodic seasonal window
//	// res.Seasonal, res.Trend, res.Remainder
//
// The decomposition is additive: seasonal + trend + remainder reproduces the
// observed span of the input. Leading and trailing missing values are
// trimmed; an internal gap fails with a *GapError, and fewer than two full
// cycles fail with an *InsufficientDataError.
//
// Non-periodic and robust fits are configured through Config:
//
//	cfg := stl.DefaultConfig()
//	cfg.SeasonalWindow = 7 // let the seasonal shape drift
//	cfg.Robust = true      // downweight outliers
//	res, err := stl.Decompose(series, 4, cfg)
//
// # Adjustment
//
// Remove components from the series the decomposition came from:
//
//	detrended, err := stl.Adjust(res.Data, res, stl.AdjustTrend)
//	random, err := stl.Adjust(res.Data, res, stl.AdjustTrendAndSeasonal)
//
// # Strength
//
// Measure how pronounced each component is:
//
//	s := stl.ComponentStrength(res)
//	fmt.Printf("trend %.2f, seasonal %.2f\n", s.Trend, s.Seasonal)
//
// # References
//
//   - Cleveland, R. B., Cleveland, W. S., McRae, J. E., & Terpenning, I. (1990).
//     STL: A Seasonal-Trend Decomposition Procedure Based on Loess.
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
package stl
