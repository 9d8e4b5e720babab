// Package align merges time series and tables on a shared timestamp key.
package align

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/gostl/timeseries"
)

// Key is the name of the timestamp column every table carries.
const Key = "timestamp"

// Role says how a column takes part in downstream modelling.
type Role int

const (
	// RoleValue marks a numeric value column.
	RoleValue Role = iota
	// RoleIdentifier marks a numeric column that identifies rows (a running
	// index, a period code) and is never used as a predictor by convention.
	RoleIdentifier
)

func (r Role) String() string {
	switch r {
	case RoleIdentifier:
		return "identifier"
	default:
		return "value"
	}
}

// Column is a named numeric column. Absent cells are NaN.
type Column struct {
	Name   string
	Role   Role
	Values []float64
}

// Table is a set of columns keyed by timestamp, one row per timestamp.
type Table struct {
	Name       string
	Timestamps []time.Time
	Columns    []Column
}

var (
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("schema error")
	// ErrEmptyInput is matched by every EmptyInputError.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// SchemaError reports a conflicting or malformed table layout.
type SchemaError struct {
	Column string
	First  string // source that declared Column first
	Second string // source that declared it again
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: column %q declared by both %q and %q", e.Column, e.First, e.Second)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// EmptyInputError reports a source with zero rows.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: source %q has no rows", e.Source)
}

// Is reports whether target is ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// FromSeries wraps a series as a one-column table named after the series.
// The series data is copied.
func FromSeries(s *timeseries.Series) *Table {
	c := s.Copy()
	name := s.Name
	if name == "" {
		name = "y"
	}
	return &Table{
		Name:       name,
		Timestamps: c.Timestamps,
		Columns:    []Column{{Name: name, Role: RoleValue, Values: c.Values}},
	}
}

// New builds a table from timestamps and value columns, validating its layout.
func New(name string, timestamps []time.Time, columns ...Column) (*Table, error) {
	t := &Table{Name: name, Timestamps: timestamps, Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks column lengths, name uniqueness and timestamp ordering.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" || c.Name == Key {
			return &SchemaError{Column: c.Name, Reason: fmt.Sprintf("table %q: invalid column name %q", t.Name, c.Name)}
		}
		if seen[c.Name] {
			return &SchemaError{Column: c.Name, First: t.Name, Second: t.Name}
		}
		seen[c.Name] = true
		if len(c.Values) != len(t.Timestamps) {
			return &SchemaError{Column: c.Name, Reason: fmt.Sprintf("table %q: column %q has %d values for %d timestamps",
				t.Name, c.Name, len(c.Values), len(t.Timestamps))}
		}
	}
	for i := 1; i < len(t.Timestamps); i++ {
		if !t.Timestamps[i].After(t.Timestamps[i-1]) {
			return &SchemaError{Reason: fmt.Sprintf("table %q: timestamp %s at row %d is not after %s",
				t.Name, t.Timestamps[i].Format(time.DateOnly), i, t.Timestamps[i-1].Format(time.DateOnly))}
		}
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Timestamps)
}

// Names returns the column names in order, excluding the timestamp key.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericNames returns the names of value-role columns.
func (t *Table) NumericNames() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Role == RoleValue {
			names = append(names, c.Name)
		}
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, t.Name)
}

// Series returns a copy of the named column as a series.
func (t *Table) Series(name string) (*timeseries.Series, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	s := &timeseries.Series{
		Timestamps: t.Timestamps,
		Values:     c.Values,
		Name:       c.Name,
	}
	return s.Copy(), nil
}

// Start returns the first timestamp at which any value column is observed.
// ok is false when the table holds no observation at all.
func (t *Table) Start() (time.Time, bool) {
	for i, ts := range t.Timestamps {
		for _, c := range t.Columns {
			if !math.IsNaN(c.Values[i]) {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// WithRole returns a copy of the table with the named column's role changed.
func (t *Table) WithRole(name string, role Role) (*Table, error) {
	out := t.Copy()
	c, err := out.Column(name)
	if err != nil {
		return nil, err
	}
	c.Role = role
	return out, nil
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	ts := make([]time.Time, len(t.Timestamps))
	copy(ts, t.Timestamps)
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]float64, len(c.Values))
		copy(vals, c.Values)
		cols[i] = Column{Name: c.Name, Role: c.Role, Values: vals}
	}
	return &Table{Name: t.Name, Timestamps: ts, Columns: cols}
}
