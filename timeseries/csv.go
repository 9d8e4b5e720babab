package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: auto-detect)
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column
	DateFormat  string // Date format tried first (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
	Name        string // Series name (default: the value column)
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// ErrNoData is returned when a CSV source yields no rows.
var ErrNoData = errors.New("no data rows found in CSV")

var quarterPattern = regexp.MustCompile(`^(\d{4})\s*[-/ ]?\s*[Qq]([1-4])$`)

// ParseQuarter parses quarterly labels such as "2020 Q1", "2020Q3" or
// "2020-Q4" into the first day of the quarter (UTC).
func ParseQuarter(s string) (time.Time, error) {
	m := quarterPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("not a quarter label: %q", s)
	}
	year, _ := strconv.Atoi(m[1])
	q, _ := strconv.Atoi(m[2])
	return time.Date(year, time.Month(Quarter*(q-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseDate tries the preferred layout, then quarter labels, then a list of
// common layouts.
func ParseDate(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(strings.Trim(s, "\""))
	if layout != "" {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	if ts, err := ParseQuarter(s); err == nil {
		return ts, nil
	}
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"Jan 2006",
		"2006-01",
		"2006",
	}
	for _, f := range formats {
		if ts, err := time.Parse(f, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func isMissing(s string) bool {
	switch s {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL", "-", "..":
		return true
	}
	return false
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := LoadCSVFromReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// LoadCSVFromReader loads a time series from an io.Reader.
//
// Missing values are kept in place as NaN so the row set, and therefore the
// timestamps, are preserved. Rows whose value is present but not numeric
// are rejected.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	valueIdx, dateIdx, idIdx := -1, -1, -1
	valueName := opts.ValueColumn

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}

		for i, h := range header {
			h = strings.TrimSpace(strings.Trim(h, "\""))
			switch {
			case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Value")):
				valueIdx = i
				valueName = h
			case opts.DateColumn != "" && h == opts.DateColumn:
				dateIdx = i
			case opts.DateColumn == "" && (h == "ds" || h == "date" || h == "Date" || h == "Quarter" || h == "quarter" || h == "timestamp"):
				if dateIdx == -1 {
					dateIdx = i
				}
			case opts.IDColumn != "" && h == opts.IDColumn:
				idIdx = i
			}
		}

		if valueIdx == -1 {
			if opts.ValueColumn != "" {
				return nil, fmt.Errorf("value column %q not found", opts.ValueColumn)
			}
			valueIdx = len(header) - 1
			valueName = strings.TrimSpace(strings.Trim(header[valueIdx], "\""))
		}
		if dateIdx == -1 {
			return nil, errors.New("date column not found")
		}
	} else {
		dateIdx = 0
		valueIdx = 1
	}

	var values []float64
	var timestamps []time.Time

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			id := strings.TrimSpace(strings.Trim(record[idIdx], "\""))
			if id != opts.IDFilter {
				continue
			}
		}

		if dateIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", line, max(dateIdx, valueIdx)+1, len(record))
		}

		ts, err := ParseDate(record[dateIdx], opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		valStr := strings.TrimSpace(strings.Trim(record[valueIdx], "\""))
		val := math.NaN()
		if !isMissing(valStr) {
			val, err = strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: value %q is not numeric", line, valStr)
			}
		}

		timestamps = append(timestamps, ts)
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	name := opts.Name
	if name == "" {
		name = valueName
	}
	if name == "" {
		name = "y"
	}

	s := &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
