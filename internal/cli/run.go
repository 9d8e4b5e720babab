package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sartorproj/gostl/align"
	"github.com/sartorproj/gostl/internal/config"
	"github.com/sartorproj/gostl/pipeline"
	"github.com/sartorproj/gostl/timeseries"
)

func newRunCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "run <run.yaml>",
		Short: "Decompose a target series and regress it on its drivers",
		Long: `Run executes the run file: it merges the target with its earliest-starting
driver, decomposes the target, appends the detrended and random series and
the components, layers the remaining drivers on, and fits the target against
the selected predictors.

Example run file:

  target:
    file: gdp.csv
    value_column: gdp
  drivers:
    - file: oil.csv
      value_column: brent
      name: oil
  frequency: 4
  seasonal_window: periodic
  join: left
  predictors: all_other_numeric

Examples:
  gostl run run.yaml
  gostl run run.yaml --output report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFile(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "report path, - for stdout (default $GOSTL_OUTPUT)")
	return cmd
}

func (a *app) runFile(cmd *cobra.Command, path, output string) error {
	r, err := config.LoadRun(path)
	if err != nil {
		return err
	}

	target, err := timeseries.LoadCSV(r.Target.File, r.Target.CSVOptions())
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}
	drivers := make([]*timeseries.Series, len(r.Drivers))
	for i, d := range r.Drivers {
		if drivers[i], err = timeseries.LoadCSV(d.File, d.CSVOptions()); err != nil {
			return fmt.Errorf("load driver %d: %w", i, err)
		}
	}

	join, err := align.ParseJoin(r.Join)
	if err != nil {
		return err
	}
	cfg := pipeline.Config{
		Period:  r.Frequency,
		STL:     r.STLConfig(),
		Join:    join,
		Exclude: r.Exclude,
		ADFLags: r.ADFLags,
	}
	if !r.Predictors.All {
		cfg.Predictors = r.Predictors.Names
	}

	out, err := pipeline.Run(cmd.Context(), pipeline.Input{Target: target, Drivers: drivers}, cfg, a.logger)
	if err != nil {
		return err
	}

	dest := firstNonEmpty(output, r.Output, a.cfg.Output)
	if err := writeReport(cmd, dest, newRunReport(out)); err != nil {
		return err
	}
	fmt.Fprintln(summaryWriter(cmd, dest), renderRun(out))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "-"
}
