package align

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Join selects which timestamps survive a merge.
type Join int

const (
	// JoinLeft keeps every row of the primary table.
	JoinLeft Join = iota
	// JoinInner keeps only timestamps present in every table.
	JoinInner
)

func (j Join) String() string {
	if j == JoinInner {
		return "inner"
	}
	return "left"
}

// ParseJoin parses "left" or "inner".
func ParseJoin(s string) (Join, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return JoinLeft, nil
	case "inner":
		return JoinInner, nil
	}
	return JoinLeft, fmt.Errorf("unknown join %q (want left or inner)", s)
}

// Policy is a join kind plus, for left joins, the index of the primary table.
type Policy struct {
	Join    Join
	Primary int
}

// Left returns a left-outer join policy against tables[primary].
func Left(primary int) Policy {
	return Policy{Join: JoinLeft, Primary: primary}
}

// Inner returns an inner join policy.
func Inner() Policy {
	return Policy{Join: JoinInner}
}

// ErrNoInput is returned when Merge is called without tables.
var ErrNoInput = errors.New("merge needs at least one table")

func key(ts time.Time) int64 {
	return ts.UnixNano()
}

// Merge joins tables on their timestamps into a new wide table.
//
// Under a left join the output has exactly one row per row of the primary
// table, in the primary's order; cells a source lacks are NaN. Under an
// inner join the output holds the timestamps shared by every table, in
// ascending order. Column names must be unique across all inputs. The inputs
// are not modified.
func Merge(policy Policy, tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, ErrNoInput
	}
	if policy.Join == JoinLeft && (policy.Primary < 0 || policy.Primary >= len(tables)) {
		return nil, fmt.Errorf("primary index %d out of range for %d tables", policy.Primary, len(tables))
	}

	owner := make(map[string]string)
	for i, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("table %d is nil", i)
		}
		if t.Len() == 0 {
			return nil, &EmptyInputError{Source: sourceName(t, i)}
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		for _, c := range t.Columns {
			if prev, ok := owner[c.Name]; ok {
				return nil, &SchemaError{Column: c.Name, First: prev, Second: sourceName(t, i)}
			}
			owner[c.Name] = sourceName(t, i)
		}
	}

	var rows []time.Time
	switch policy.Join {
	case JoinInner:
		rows = intersect(tables)
	default:
		rows = make([]time.Time, len(tables[policy.Primary].Timestamps))
		copy(rows, tables[policy.Primary].Timestamps)
	}

	out := &Table{
		Name:       mergedName(policy, tables),
		Timestamps: rows,
	}
	for _, t := range tables {
		index := make(map[int64]int, t.Len())
		for i, ts := range t.Timestamps {
			index[key(ts)] = i
		}
		for _, c := range t.Columns {
			vals := make([]float64, len(rows))
			for r, ts := range rows {
				if i, ok := index[key(ts)]; ok {
					vals[r] = c.Values[i]
				} else {
					vals[r] = math.NaN()
				}
			}
			out.Columns = append(out.Columns, Column{Name: c.Name, Role: c.Role, Values: vals})
		}
	}
	return out, nil
}

func intersect(tables []*Table) []time.Time {
	counts := make(map[int64]int)
	stamps := make(map[int64]time.Time)
	for _, t := range tables {
		for _, ts := range t.Timestamps {
			counts[key(ts)]++
			if _, ok := stamps[key(ts)]; !ok {
				stamps[key(ts)] = ts
			}
		}
	}
	var rows []time.Time
	for k, n := range counts {
		if n == len(tables) {
			rows = append(rows, stamps[k])
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Before(rows[j]) })
	return rows
}

func sourceName(t *Table, i int) string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("table[%d]", i)
}

func mergedName(policy Policy, tables []*Table) string {
	if policy.Join == JoinLeft {
		return sourceName(tables[policy.Primary], policy.Primary)
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = sourceName(t, i)
	}
	return strings.Join(names, "+")
}
