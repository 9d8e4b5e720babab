// Package gostl decomposes quarterly series with STL and regresses them on
// exogenous drivers.
//
// A run takes a target series (for example quarterly GDP) and one or more
// driver series at the same frequency, aligns them on their timestamps,
// splits the target into trend, seasonal and remainder components, derives
// the detrended and random series, and fits an ordinary least squares model
// of the target on the drivers.
//
// # Quick Start
//
// Decompose a series:
//
//	series, _ := timeseries.LoadCSV("gdp.csv", opts)
//	res, _ := stl.Decompose(series, 4, nil)  // periodic seasonal window
//	random, _ := stl.Adjust(res.Data, res, stl.AdjustTrendAndSeasonal)
//
// Merge with drivers and fit:
//
//	table, _ := align.Merge(align.Left(0), align.FromSeries(series), align.FromSeries(oil))
//	model, _ := regression.Fit(table, "gdp", regression.AllOtherNumeric())
//	fmt.Println(model.RSquared, model.Coefficients())
//
// Or run every step at once:
//
//	out, _ := pipeline.Run(ctx, pipeline.Input{Target: gdp, Drivers: drivers}, pipeline.DefaultConfig(), logger)
//
// # Packages
//
//   - timeseries: Series container and CSV loading
//   - align: Timestamp-keyed tables and left/inner merges
//   - stl: STL decomposition and component adjustment
//   - stats: Least squares, residual diagnostics, unit-root test
//   - regression: OLS models on aligned tables
//   - pipeline: The end-to-end run
//
// The gostl command in cmd/gostl drives the pipeline from a YAML run file.
//
// # References
//
//   - Cleveland, R. B., Cleveland, W. S., McRae, J. E., & Terpenning, I. (1990).
//     STL: A Seasonal-Trend Decomposition Procedure Based on Loess.
//     Journal of Official Statistics, 6(1), 3-73.
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
package gostl
