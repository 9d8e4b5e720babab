package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/gostl/align"
	"github.com/sartorproj/gostl/stl"
	"github.com/sartorproj/gostl/timeseries"
)

// AllOtherNumeric is the predictors keyword selecting every remaining
// numeric column.
const AllOtherNumeric = "all_other_numeric"

// Source locates one series in a CSV file.
type Source struct {
	File        string `yaml:"file"`
	DateColumn  string `yaml:"date_column"`
	ValueColumn string `yaml:"value_column"`
	DateFormat  string `yaml:"date_format"`
	Name        string `yaml:"name"`
}

// CSVOptions converts the source into loader options.
func (s Source) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.DateColumn = s.DateColumn
	if s.ValueColumn != "" {
		opts.ValueColumn = s.ValueColumn
	}
	if s.DateFormat != "" {
		opts.DateFormat = s.DateFormat
	}
	opts.Name = s.Name
	return opts
}

// Window is a seasonal window: periodic, or an odd span of at least 3.
// In YAML it is either the word "periodic" or an integer.
type Window int

// UnmarshalYAML accepts "periodic" or an integer.
func (w *Window) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: seasonal_window must be \"periodic\" or an integer", node.Line)
	}
	if strings.EqualFold(node.Value, "periodic") {
		*w = stl.Periodic
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: seasonal_window %q: want \"periodic\" or an integer", node.Line, node.Value)
	}
	*w = Window(n)
	return nil
}

// Predictors is either the all_other_numeric keyword (All) or a list of
// column names.
type Predictors struct {
	All   bool
	Names []string
}

// UnmarshalYAML accepts the all_other_numeric keyword or a sequence of names.
func (p *Predictors) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != AllOtherNumeric {
			return fmt.Errorf("line %d: predictors %q: want %s or a list", node.Line, node.Value, AllOtherNumeric)
		}
		*p = Predictors{All: true}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*p = Predictors{Names: names}
		return nil
	}
	return fmt.Errorf("line %d: predictors must be %s or a list", node.Line, AllOtherNumeric)
}

// Run describes one decomposition and regression run.
type Run struct {
	Target         Source     `yaml:"target"`
	Drivers        []Source   `yaml:"drivers"`
	Frequency      int        `yaml:"frequency"`
	SeasonalWindow Window     `yaml:"seasonal_window"`
	Robust         bool       `yaml:"robust"`
	Join           string     `yaml:"join"`
	Predictors     Predictors `yaml:"predictors"`
	Exclude        []string   `yaml:"exclude"`
	ADFLags        int        `yaml:"adf_lags"`
	Output         string     `yaml:"output"`
}

// ErrInvalidRun is wrapped by every validation failure of a run file.
var ErrInvalidRun = errors.New("invalid run file")

// LoadRun reads and validates a YAML run file. Relative source paths are
// resolved against the file's directory.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run file: %w", err)
	}
	r, err := ParseRun(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	r.Target.File = resolve(dir, r.Target.File)
	for i := range r.Drivers {
		r.Drivers[i].File = resolve(dir, r.Drivers[i].File)
	}
	return r, nil
}

// ParseRun decodes and validates a YAML run definition.
func ParseRun(data []byte) (*Run, error) {
	r := &Run{
		Frequency:  4,
		Join:       "left",
		Predictors: Predictors{All: true},
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse run file: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the run for missing sources and malformed settings.
func (r *Run) Validate() error {
	if r.Target.File == "" {
		return fmt.Errorf("%w: target.file is required", ErrInvalidRun)
	}
	for i, d := range r.Drivers {
		if d.File == "" {
			return fmt.Errorf("%w: drivers[%d].file is required", ErrInvalidRun, i)
		}
	}
	if r.Frequency < 2 {
		return fmt.Errorf("%w: frequency %d must be at least 2", ErrInvalidRun, r.Frequency)
	}
	if w := int(r.SeasonalWindow); w != stl.Periodic && (w < 3 || w%2 == 0) {
		return fmt.Errorf("%w: seasonal_window %d must be periodic or an odd integer >= 3", ErrInvalidRun, w)
	}
	if _, err := align.ParseJoin(r.Join); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRun, err)
	}
	if !r.Predictors.All && len(r.Predictors.Names) == 0 {
		return fmt.Errorf("%w: predictors list is empty", ErrInvalidRun)
	}
	if r.ADFLags < 0 {
		return fmt.Errorf("%w: adf_lags must not be negative", ErrInvalidRun)
	}
	return nil
}

// STLConfig returns the decomposition settings of the run.
func (r *Run) STLConfig() *stl.Config {
	c := stl.DefaultConfig()
	c.SeasonalWindow = int(r.SeasonalWindow)
	c.Robust = r.Robust
	return c
}

func resolve(dir, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
