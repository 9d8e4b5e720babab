// Package stl implements Seasonal-Trend decomposition using Loess and the
// component adjustments derived from it.
package stl

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/gostl/timeseries"
)

// Periodic is the SeasonalWindow value that fixes the seasonal shape to one
// constant pattern per phase.
const Periodic = 0

// Config holds the smoothing parameters of the decomposition.
// Zero windows are derived from the period; start from DefaultConfig.
type Config struct {
	SeasonalWindow int // Cycle-subseries loess span; Periodic (0) for a fixed pattern
	SeasonalDegree int // 0 or 1; forced to 0 in periodic mode
	TrendWindow    int // Trend loess span (0 = auto)
	TrendDegree    int // 0 or 1
	LowPassWindow  int // Low-pass loess span (0 = next odd >= period)
	LowPassDegree  int // 0 or 1

	MaxInnerIterations int     // Upper bound on trend/seasonal passes
	Tolerance          float64 // Convergence threshold relative to the data range

	Robust          bool // Downweight outliers with bisquare weights
	OuterIterations int  // Robustness passes when Robust is set
}

// DefaultConfig returns the configuration for a periodic, non-robust fit.
func DefaultConfig() *Config {
	return &Config{
		SeasonalWindow:     Periodic,
		SeasonalDegree:     0,
		TrendDegree:        1,
		LowPassDegree:      1,
		MaxInnerIterations: 100,
		Tolerance:          1e-10,
		OuterIterations:    15,
	}
}

var (
	// ErrInvalidPeriod is returned when the period is below 2.
	ErrInvalidPeriod = errors.New("period must be at least 2")
	// ErrInvalidConfig is returned for malformed smoothing parameters.
	ErrInvalidConfig = errors.New("invalid decomposition config")
	// ErrInsufficientData is matched by every InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrGap is matched by every GapError.
	ErrGap = errors.New("missing value inside observed span")
)

// InsufficientDataError reports a series shorter than two full cycles.
type InsufficientDataError struct {
	Series string
	N      int
	Period int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: series %q has %d observations, need at least %d (two cycles of %d)",
		e.Series, e.N, 2*e.Period, e.Period)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// GapError reports the first missing value between the first and last
// observation of a series.
type GapError struct {
	Series    string
	Index     int
	Timestamp time.Time
}

func (e *GapError) Error() string {
	if e.Timestamp.IsZero() {
		return fmt.Sprintf("series %q: missing value at index %d inside observed span", e.Series, e.Index)
	}
	return fmt.Sprintf("series %q: missing value at %s (index %d) inside observed span",
		e.Series, e.Timestamp.Format(time.DateOnly), e.Index)
}

// Is reports whether target is ErrGap.
func (e *GapError) Is(target error) bool { return target == ErrGap }

// Result represents the result of STL decomposition. All series share the
// timestamps of Data, the observed span of the input.
type Result struct {
	Data      *timeseries.Series
	Seasonal  *timeseries.Series
	Trend     *timeseries.Series
	Remainder *timeseries.Series
	Weights   []float64 // Final robustness weights (nil unless Robust)

	Period     int
	Periodic   bool
	Iterations int  // Inner passes of the last outer pass
	Converged  bool // Whether the inner loop met Tolerance
	Config     Config
}

// Components returns the seasonal, trend and remainder series in that order.
func (r *Result) Components() []*timeseries.Series {
	return []*timeseries.Series{r.Seasonal, r.Trend, r.Remainder}
}

// Decompose splits series into seasonal, trend and remainder components.
//
// The series must have strictly increasing timestamps, one per value.
// Leading and trailing missing values are trimmed; a missing value between
// the first and last observation fails with a *GapError. The series must
// hold at least two full cycles. A nil cfg uses DefaultConfig.
//
// In periodic mode the seasonal component is the per-phase mean of the
// smoothed seasonal, so it repeats exactly every period observations.
// The remainder is always value - trend - seasonal.
func Decompose(series *timeseries.Series, period int, cfg *Config) (*Result, error) {
	if period < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if gap := series.FirstGap(); gap >= 0 {
		e := &GapError{Series: series.Name, Index: gap}
		if gap < len(series.Timestamps) {
			e.Timestamp = series.Timestamps[gap]
		}
		return nil, e
	}

	data := series.TrimMissing()
	n := data.Len()
	if n < 2*period {
		return nil, &InsufficientDataError{Series: series.Name, N: n, Period: period}
	}

	c, err := resolve(*cfg, n, period)
	if err != nil {
		return nil, err
	}

	y := data.Values
	seasonal := make([]float64, n)
	trend := make([]float64, n)

	var rw []float64
	passes := 1
	if c.Robust {
		passes += c.OuterIterations
	}

	var iterations int
	var converged bool
	for pass := 0; pass < passes; pass++ {
		iterations, converged = innerLoop(y, period, c, rw, seasonal, trend)
		if pass < passes-1 {
			fit := make([]float64, n)
			for i := range fit {
				fit[i] = trend[i] + seasonal[i]
			}
			rw = robustnessWeights(y, fit)
		}
	}

	periodic := cfg.SeasonalWindow == Periodic
	if periodic {
		phaseMeans(seasonal, period)
	}

	remainder := make([]float64, n)
	for i := range y {
		remainder[i] = y[i] - trend[i] - seasonal[i]
	}

	return &Result{
		Data:      data,
		Seasonal:  component(data, seasonal, "seasonal"),
		Trend:     component(data, trend, "trend"),
		Remainder: component(data, remainder, "remainder"),
		Weights:   rw,

		Period:     period,
		Periodic:   periodic,
		Iterations: iterations,
		Converged:  converged,
		Config:     c,
	}, nil
}

// innerLoop alternates seasonal and trend smoothing until the largest change
// in either falls below the tolerance.
func innerLoop(y []float64, period int, c Config, rw, seasonal, trend []float64) (int, bool) {
	n := len(y)
	scale := rangeOf(y)
	if scale == 0 {
		scale = math.Max(math.Abs(y[0]), 1)
	}

	detrended := make([]float64, n)
	deseasonalized := make([]float64, n)
	cycles := make([]float64, n+2*period)
	nextTrend := make([]float64, n)

	for iter := 1; iter <= c.MaxInnerIterations; iter++ {
		for i := range y {
			detrended[i] = y[i] - trend[i]
		}
		smoothCycles(detrended, period, c.SeasonalWindow, c.SeasonalDegree, rw, cycles)
		low := lowPass(cycles, period, c.LowPassWindow, c.LowPassDegree)

		change := 0.0
		for i := 0; i < n; i++ {
			s := cycles[period+i] - low[i]
			change = math.Max(change, math.Abs(s-seasonal[i]))
			seasonal[i] = s
			deseasonalized[i] = y[i] - s
		}

		smooth(deseasonalized, c.TrendWindow, c.TrendDegree, rw, nextTrend)
		for i := 0; i < n; i++ {
			change = math.Max(change, math.Abs(nextTrend[i]-trend[i]))
			trend[i] = nextTrend[i]
		}

		if iter > 1 && change <= c.Tolerance*scale {
			return iter, true
		}
	}
	return c.MaxInnerIterations, false
}

// resolve fills derived windows and validates the configuration.
func resolve(c Config, n, period int) (Config, error) {
	if c.SeasonalWindow == Periodic {
		c.SeasonalWindow = 10*n + 1
		c.SeasonalDegree = 0
	}
	if c.TrendWindow == 0 {
		c.TrendWindow = nextOdd(int(math.Ceil(1.5 * float64(period) / (1 - 1.5/float64(c.SeasonalWindow)))))
	}
	if c.LowPassWindow == 0 {
		c.LowPassWindow = nextOdd(period)
	}
	if c.MaxInnerIterations <= 0 {
		c.MaxInnerIterations = 2
	}
	if c.Robust && c.OuterIterations <= 0 {
		c.OuterIterations = 15
	}

	for _, w := range []struct {
		name  string
		value *int
	}{
		{"seasonal", &c.SeasonalWindow},
		{"trend", &c.TrendWindow},
		{"low-pass", &c.LowPassWindow},
	} {
		if *w.value < 3 {
			return c, fmt.Errorf("%w: %s window %d must be at least 3", ErrInvalidConfig, w.name, *w.value)
		}
		*w.value = nextOdd(*w.value)
	}
	for _, d := range []int{c.SeasonalDegree, c.TrendDegree, c.LowPassDegree} {
		if d != 0 && d != 1 {
			return c, fmt.Errorf("%w: loess degree %d (want 0 or 1)", ErrInvalidConfig, d)
		}
	}
	if c.Tolerance < 0 {
		return c, fmt.Errorf("%w: negative tolerance", ErrInvalidConfig)
	}
	return c, nil
}

// phaseMeans replaces each value by the mean of its phase.
func phaseMeans(x []float64, period int) {
	sums := make([]float64, period)
	counts := make([]float64, period)
	for i, v := range x {
		sums[i%period] += v
		counts[i%period]++
	}
	for i := range x {
		x[i] = sums[i%period] / counts[i%period]
	}
}

func component(data *timeseries.Series, values []float64, suffix string) *timeseries.Series {
	timestamps := make([]time.Time, len(data.Timestamps))
	copy(timestamps, data.Timestamps)
	return &timeseries.Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name(data.Name, suffix),
	}
}

func name(base, suffix string) string {
	if base == "" {
		return suffix
	}
	return base + "_" + suffix
}

func nextOdd(x int) int {
	if x%2 == 0 {
		return x + 1
	}
	return x
}

func rangeOf(y []float64) float64 {
	lo, hi := y[0], y[0]
	for _, v := range y[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}
