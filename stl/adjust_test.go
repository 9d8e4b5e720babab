package stl

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sartorproj/gostl/timeseries"
)

func TestAdjustModes(t *testing.T) {
	series := quarterlySeries(32, 0.8, []float64{4, -1, -5, 2}, true)
	res, err := Decompose(series, 4, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	detrended, err := Adjust(res.Data, res, AdjustTrend)
	if err != nil {
		t.Fatalf("Adjust trend failed: %v", err)
	}
	random, err := Adjust(res.Data, res, AdjustTrendAndSeasonal)
	if err != nil {
		t.Fatalf("Adjust trend_and_seasonal failed: %v", err)
	}

	for i := range series.Values {
		want := series.Values[i] - res.Trend.Values[i]
		if math.Abs(detrended.Values[i]-want) > 1e-12 {
			t.Errorf("Detrended at %d: expected %f, got %f", i, want, detrended.Values[i])
		}

		consistent := detrended.Values[i] - res.Seasonal.Values[i]
		if math.Abs(random.Values[i]-consistent) > 1e-9 {
			t.Errorf("Random at %d: expected %f, got %f", i, consistent, random.Values[i])
		}

		if math.Abs(random.Values[i]-res.Remainder.Values[i]) > 1e-9 {
			t.Errorf("Random at %d should equal remainder %f, got %f", i, res.Remainder.Values[i], random.Values[i])
		}
	}

	if detrended.Name != "gdp_detrended" || random.Name != "gdp_random" {
		t.Errorf("Unexpected names %q and %q", detrended.Name, random.Name)
	}
	if !detrended.Timestamps[0].Equal(res.Trend.Timestamps[0]) {
		t.Error("Adjusted series should share the decomposition's timestamps")
	}
}

func TestAdjustIsPure(t *testing.T) {
	series := quarterlySeries(16, 1, []float64{1, -1, 1, -1}, true)
	res, err := Decompose(series, 4, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	input := res.Data.Copy()
	trend := res.Trend.Copy()

	if _, err := Adjust(res.Data, res, AdjustTrendAndSeasonal); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	for i := range input.Values {
		if input.Values[i] != res.Data.Values[i] || trend.Values[i] != res.Trend.Values[i] {
			t.Fatalf("Adjust modified its inputs at %d", i)
		}
	}
}

func TestAdjustAlignmentErrors(t *testing.T) {
	series := quarterlySeries(16, 1, []float64{1, -1, 1, -1}, false)
	res, err := Decompose(series, 4, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	short := series.Slice(0, 12)
	_, err = Adjust(short, res, AdjustTrend)
	if !errors.Is(err, ErrAlignment) {
		t.Fatalf("Expected ErrAlignment, got %v", err)
	}
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) || alignErr.Want != 16 || alignErr.Got != 12 {
		t.Errorf("Unexpected error detail: %+v", alignErr)
	}

	shifted := timeseries.NewQuarterly(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), series.Values)
	if _, err := Adjust(shifted, res, AdjustTrend); !errors.Is(err, ErrAlignment) {
		t.Errorf("Expected ErrAlignment for shifted timestamps, got %v", err)
	}

	if _, err := Adjust(series, res, AdjustMode(7)); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestParseAdjustMode(t *testing.T) {
	tests := []struct {
		in   string
		want AdjustMode
	}{
		{"trend", AdjustTrend},
		{"trend_and_seasonal", AdjustTrendAndSeasonal},
		{" TREND ", AdjustTrend},
	}
	for _, tt := range tests {
		got, err := ParseAdjustMode(tt.in)
		if err != nil {
			t.Fatalf("ParseAdjustMode(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseAdjustMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseAdjustMode("seasonal"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestComponentStrength(t *testing.T) {
	seasonal := quarterlySeries(40, 0.05, []float64{10, -4, -9, 3}, true)
	res, err := Decompose(seasonal, 4, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	s := ComponentStrength(res)
	if s.Seasonal < 0.9 {
		t.Errorf("Expected strong seasonality, got %f", s.Seasonal)
	}
	if s.Trend < 0 || s.Trend > 1 || s.Seasonal > 1 {
		t.Errorf("Strength out of range: %+v", s)
	}

	trending := quarterlySeries(40, 3, []float64{0.1, -0.1, 0.1, -0.1}, true)
	res, err = Decompose(trending, 4, nil)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	s = ComponentStrength(res)
	if s.Trend < 0.9 {
		t.Errorf("Expected strong trend, got %f", s.Trend)
	}
}
