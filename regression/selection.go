package regression

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sartorproj/gostl/align"
)

// Selection chooses the predictor columns of a fit.
type Selection struct {
	names   []string
	all     bool
	exclude []string
}

// Predictors selects exactly the named columns, in order.
func Predictors(names ...string) Selection {
	return Selection{names: slices.Clone(names)}
}

// AllOtherNumeric selects every value-role column except the target and the
// excluded names. Identifier-role columns and the timestamp key are never
// selected.
func AllOtherNumeric(exclude ...string) Selection {
	return Selection{all: true, exclude: slices.Clone(exclude)}
}

func (s Selection) String() string {
	if s.all {
		if len(s.exclude) == 0 {
			return "all_other_numeric"
		}
		return fmt.Sprintf("all_other_numeric (excluding %s)", strings.Join(s.exclude, ", "))
	}
	return strings.Join(s.names, ", ")
}

// resolve returns the predictor names and the columns left out by convention.
func (s Selection) resolve(t *align.Table, target string) (predictors, excluded []string, err error) {
	if !s.all {
		seen := make(map[string]bool, len(s.names))
		for _, name := range s.names {
			if name == target {
				return nil, nil, fmt.Errorf("target %q cannot also be a predictor", target)
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("predictor %q listed twice", name)
			}
			seen[name] = true
			if _, err := t.Column(name); err != nil {
				return nil, nil, err
			}
		}
		return slices.Clone(s.names), nil, nil
	}

	excluded = []string{align.Key}
	for _, c := range t.Columns {
		switch {
		case c.Name == target:
		case c.Role == align.RoleIdentifier, slices.Contains(s.exclude, c.Name):
			excluded = append(excluded, c.Name)
		default:
			predictors = append(predictors, c.Name)
		}
	}
	return predictors, excluded, nil
}
