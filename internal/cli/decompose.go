package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sartorproj/gostl/stl"
	"github.com/sartorproj/gostl/timeseries"
)

func newDecomposeCmd(a *app) *cobra.Command {
	var (
		opts           = timeseries.DefaultCSVOptions()
		period         int
		seasonalWindow string
		robust         bool
		output         string
	)

	cmd := &cobra.Command{
		Use:   "decompose <file.csv>",
		Short: "Decompose one series into trend, seasonal and remainder",
		Long: `Decompose runs STL on one CSV series and reports the components, the
detrended and random series, and the strength of trend and seasonality.

Examples:
  gostl decompose gdp.csv --value-column gdp
  gostl decompose gdp.csv --seasonal-window 7 --robust --output gdp.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(seasonalWindow)
			if err != nil {
				return err
			}

			series, err := timeseries.LoadCSV(args[0], opts)
			if err != nil {
				return err
			}

			cfg := stl.DefaultConfig()
			cfg.SeasonalWindow = window
			cfg.Robust = robust
			res, err := stl.Decompose(series, period, cfg)
			if err != nil {
				return err
			}
			a.logger.Info("decomposed series", "series", series.Name, "observations", res.Data.Len(), "converged", res.Converged)

			detrended, err := stl.Adjust(res.Data, res, stl.AdjustTrend)
			if err != nil {
				return err
			}
			random, err := stl.Adjust(res.Data, res, stl.AdjustTrendAndSeasonal)
			if err != nil {
				return err
			}
			strength := stl.ComponentStrength(res)

			dest := firstNonEmpty(output, a.cfg.Output)
			if err := writeReport(cmd, dest, newDecompositionReport(res, detrended, random, strength)); err != nil {
				return err
			}
			fmt.Fprintln(summaryWriter(cmd, dest), renderDecomposition(res, strength))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DateColumn, "date-column", "", "date column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.ValueColumn, "value-column", opts.ValueColumn, "value column")
	cmd.Flags().StringVar(&opts.Name, "name", "", "series name (default: the value column)")
	cmd.Flags().IntVarP(&period, "period", "p", 4, "observations per cycle")
	cmd.Flags().StringVarP(&seasonalWindow, "seasonal-window", "s", "periodic", "periodic or an odd span >= 3")
	cmd.Flags().BoolVar(&robust, "robust", false, "downweight outliers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report path, - for stdout (default $GOSTL_OUTPUT)")
	return cmd
}

func parseWindow(s string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(s), "periodic") {
		return stl.Periodic, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 3 || n%2 == 0 {
		return 0, fmt.Errorf("seasonal window %q: want periodic or an odd integer >= 3", s)
	}
	return n, nil
}
