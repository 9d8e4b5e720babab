// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quarter is the spacing between consecutive quarterly observations.
const Quarter = 3

// Epoch is the first timestamp assigned by New.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrLengthMismatch is returned when timestamps and values differ in length.
	ErrLengthMismatch = errors.New("timestamps and values must have the same length")
	// ErrUnordered is returned when timestamps are not strictly increasing.
	ErrUnordered = errors.New("timestamps must be strictly increasing")
)

// Series represents a time series with timestamps and values.
// A missing observation is stored as NaN.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a quarterly series from values, starting at Epoch.
func New(values []float64) *Series {
	return NewQuarterly(Epoch, values)
}

// NewQuarterly creates a series with one observation per quarter from start.
func NewQuarterly(start time.Time, values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, Quarter*i, 0)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
// The timestamps must be strictly increasing.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	s := &Series{
		Timestamps: timestamps,
		Values:     values,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the series carries one timestamp per value and that
// timestamps are strictly increasing (which also rules out duplicates).
func (s *Series) Validate() error {
	if len(s.Timestamps) != len(s.Values) {
		return ErrLengthMismatch
	}
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return fmt.Errorf("%w: %q at index %d (%s after %s)", ErrUnordered, s.Name, i,
				s.Timestamps[i].Format(time.DateOnly), s.Timestamps[i-1].Format(time.DateOnly))
		}
	}
	return nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Missing returns the number of missing (NaN) observations.
func (s *Series) Missing() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Observed returns the non-missing values in order.
func (s *Series) Observed() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Span returns the index range [first, last] of the observed values.
// ok is false when every value is missing.
func (s *Series) Span() (first, last int, ok bool) {
	first, last = -1, -1
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last, first >= 0
}

// TrimMissing returns a copy without leading and trailing missing values.
func (s *Series) TrimMissing() *Series {
	first, last, ok := s.Span()
	if !ok {
		return &Series{Values: []float64{}, Timestamps: []time.Time{}, Name: s.Name}
	}
	return s.Slice(first, last+1)
}

// FirstGap returns the index of the first missing value strictly between the
// first and last observation, or -1 when the observed span is contiguous.
func (s *Series) FirstGap() int {
	first, last, ok := s.Span()
	if !ok {
		return -1
	}
	for i := first + 1; i < last; i++ {
		if math.IsNaN(s.Values[i]) {
			return i
		}
	}
	return -1
}

// Mean calculates the arithmetic mean of the observed values.
func (s *Series) Mean() float64 {
	obs := s.Observed()
	if len(obs) == 0 {
		return 0
	}
	return stat.Mean(obs, nil)
}

// Variance calculates the sample variance of the observed values.
func (s *Series) Variance() float64 {
	obs := s.Observed()
	if len(obs) < 2 {
		return 0
	}
	return stat.Variance(obs, nil)
}

// Std calculates the standard deviation of the observed values.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum observed value.
func (s *Series) Min() float64 {
	obs := s.Observed()
	if len(obs) == 0 {
		return math.NaN()
	}
	return floats.Min(obs)
}

// Max returns the maximum observed value.
func (s *Series) Max() float64 {
	obs := s.Observed()
	if len(obs) == 0 {
		return math.NaN()
	}
	return floats.Max(obs)
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Timestamps: []time.Time{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Rename returns a copy of the series under a new name.
func (s *Series) Rename(name string) *Series {
	c := s.Copy()
	c.Name = name
	return c
}
