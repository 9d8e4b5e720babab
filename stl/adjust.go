package stl

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/gostl/timeseries"
)

// AdjustMode selects which components Adjust removes.
type AdjustMode int

const (
	// AdjustTrend removes the trend, leaving seasonal + remainder.
	AdjustTrend AdjustMode = iota
	// AdjustTrendAndSeasonal removes trend and seasonal, leaving the
	// remainder (the random component).
	AdjustTrendAndSeasonal
)

func (m AdjustMode) String() string {
	switch m {
	case AdjustTrend:
		return "trend"
	case AdjustTrendAndSeasonal:
		return "trend_and_seasonal"
	}
	return fmt.Sprintf("AdjustMode(%d)", int(m))
}

// Suffix is the name suffix Adjust gives its output.
func (m AdjustMode) Suffix() string {
	if m == AdjustTrendAndSeasonal {
		return "random"
	}
	return "detrended"
}

// ParseAdjustMode parses "trend" or "trend_and_seasonal".
func ParseAdjustMode(s string) (AdjustMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trend":
		return AdjustTrend, nil
	case "trend_and_seasonal", "trend+seasonal", "random":
		return AdjustTrendAndSeasonal, nil
	}
	return 0, fmt.Errorf("unknown adjust mode %q", s)
}

// ErrAlignment is matched by every AlignmentError.
var ErrAlignment = errors.New("alignment error")

// AlignmentError reports a series that does not line up with a
// decomposition's index set.
type AlignmentError struct {
	Series string
	Want   int
	Got    int
	Index  int       // first mismatching row when lengths agree, else -1
	At     time.Time // timestamp expected at Index
}

func (e *AlignmentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("alignment error: series %q has %d values, decomposition has %d", e.Series, e.Got, e.Want)
	}
	return fmt.Sprintf("alignment error: series %q row %d is not at %s", e.Series, e.Index, e.At.Format(time.DateOnly))
}

// Is reports whether target is ErrAlignment.
func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }

// Adjust returns a new series with the trend (and, in
// AdjustTrendAndSeasonal mode, the seasonal component) subtracted.
//
// series must be aligned to res: same length and, when both carry
// timestamps, the same timestamps. Neither input is modified. The output
// uses the decomposition's timestamps.
func Adjust(series *timeseries.Series, res *Result, mode AdjustMode) (*timeseries.Series, error) {
	if res == nil {
		return nil, errors.New("nil decomposition")
	}
	if mode != AdjustTrend && mode != AdjustTrendAndSeasonal {
		return nil, fmt.Errorf("unknown adjust mode %d", int(mode))
	}

	want := res.Trend.Len()
	if series.Len() != want {
		return nil, &AlignmentError{Series: series.Name, Want: want, Got: series.Len(), Index: -1}
	}
	if len(series.Timestamps) == series.Len() && len(res.Trend.Timestamps) == want {
		for i, ts := range series.Timestamps {
			if !ts.Equal(res.Trend.Timestamps[i]) {
				return nil, &AlignmentError{Series: series.Name, Want: want, Got: series.Len(), Index: i, At: res.Trend.Timestamps[i]}
			}
		}
	}

	values := make([]float64, want)
	floats.SubTo(values, series.Values, res.Trend.Values)
	if mode == AdjustTrendAndSeasonal {
		floats.Sub(values, res.Seasonal.Values)
	}

	timestamps := make([]time.Time, want)
	copy(timestamps, res.Trend.Timestamps)

	return &timeseries.Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name(series.Name, mode.Suffix()),
	}, nil
}

// Strength measures how much of the variation the trend and seasonal
// components explain, each in [0, 1].
type Strength struct {
	Trend    float64
	Seasonal float64
}

// ComponentStrength computes trend strength max(0, 1 - Var(R)/Var(T+R)) and
// seasonal strength max(0, 1 - Var(R)/Var(S+R)).
func ComponentStrength(res *Result) Strength {
	r := res.Remainder.Values
	n := len(r)
	if n < 2 {
		return Strength{}
	}
	tr := make([]float64, n)
	floats.AddTo(tr, res.Trend.Values, r)
	sr := make([]float64, n)
	floats.AddTo(sr, res.Seasonal.Values, r)

	vr := stat.Variance(r, nil)
	return Strength{
		Trend:    strength(vr, stat.Variance(tr, nil)),
		Seasonal: strength(vr, stat.Variance(sr, nil)),
	}
}

func strength(remainderVar, componentVar float64) float64 {
	if componentVar <= 0 {
		return 0
	}
	return math.Max(0, 1-remainderVar/componentVar)
}
