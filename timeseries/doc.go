// Package timeseries provides time series data structures and utilities.
//
// A Series holds an ordered sequence of (timestamp, value) pairs. Missing
// observations are stored as NaN rather than dropped, so the timestamps of a
// series always describe the full sampling grid handed over by the caller.
//
// # Creating a Series
//
// Create a quarterly series from a slice:
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.NewQuarterly(start, values)
//
// Or with explicit timestamps (must be strictly increasing):
//
//	series, err := timeseries.NewWithTimestamps(timestamps, values)
//
// # Missing Values
//
// Decomposition needs a contiguous block of observations:
//
//	trimmed := series.TrimMissing() // drop leading/trailing NaN
//	if i := trimmed.FirstGap(); i >= 0 {
//	    // internal gap at index i
//	}
//
// # Loading from CSV
//
// Load clean tabular output into a series:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.DateColumn = "quarter"
//	opts.ValueColumn = "gdp"
//	series, err := timeseries.LoadCSV("gdp.csv", opts)
//
// Dates may be ISO dates or quarter labels ("2020 Q1", "2020Q1", "2020-Q1").
// Empty cells and NA markers become NaN.
//
// # Basic Statistics
//
// Statistics ignore missing values:
//
//	mean := series.Mean()
//	std := series.Std()
//	min, max := series.Min(), series.Max()
package timeseries
