// Package pipeline composes alignment, decomposition, adjustment and
// regression into one run over a target series and its drivers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sartorproj/gostl/align"
	"github.com/sartorproj/gostl/regression"
	"github.com/sartorproj/gostl/stats"
	"github.com/sartorproj/gostl/stl"
	"github.com/sartorproj/gostl/timeseries"
)

// Input is the data of one run. Series names become column names and must
// be unique.
type Input struct {
	Target  *timeseries.Series
	Drivers []*timeseries.Series
}

// Config controls one run.
type Config struct {
	Period int         // Observations per cycle, 4 for quarterly data
	STL    *stl.Config // nil uses stl.DefaultConfig

	// Join is the policy for layering the remaining drivers onto the
	// decomposed table. Left keeps every row of that table.
	Join align.Join

	// Predictors lists the regressors. Empty selects all other numeric
	// columns except the derived component columns and Exclude.
	Predictors []string
	Exclude    []string

	ADFLags int // Lagged differences in the residual unit-root test; 0 = auto
}

// DefaultConfig returns the configuration for quarterly data.
func DefaultConfig() Config {
	return Config{
		Period: 4,
		Join:   align.JoinLeft,
	}
}

// Output holds every intermediate and final product of a run.
type Output struct {
	RunID string

	Primary       string       // Source that fixed the row set of the first merge
	Decomposition *stl.Result
	Detrended     *timeseries.Series
	Random        *timeseries.Series
	Strength      stl.Strength
	Derived       []string     // Component columns appended to the table
	Table         *align.Table // Final aligned table the model was fitted on
	Model         *regression.Model

	ResidualADF *stats.ADFResult // nil when too few residuals
	ResidualACF *stats.ACFResult
}

// ErrNoTarget is returned when Input carries no target series.
var ErrNoTarget = errors.New("no target series")

// Run executes one decomposition and regression run:
//
//  1. merge the target with the earliest-starting driver, keeping the rows
//     of whichever of the two starts first;
//  2. decompose the target column;
//  3. append the adjusted series and components to the merged table;
//  4. layer the remaining drivers on with cfg.Join;
//  5. fit the target against the selected predictors;
//  6. compute component strength and residual diagnostics.
//
// ctx is checked between steps.
func Run(ctx context.Context, in Input, cfg Config, logger *slog.Logger) (*Output, error) {
	if in.Target == nil {
		return nil, ErrNoTarget
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultConfig().Period
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	out := &Output{RunID: uuid.NewString()}
	logger = logger.With("run_id", out.RunID)
	started := time.Now()

	target := align.FromSeries(in.Target)
	targetName := target.Columns[0].Name
	drivers := make([]*align.Table, len(in.Drivers))
	for i, d := range in.Drivers {
		if d == nil {
			return nil, fmt.Errorf("driver %d is nil", i)
		}
		drivers[i] = align.FromSeries(d)
	}
	logger.Info("run started", "target", targetName, "drivers", len(drivers), "period", cfg.Period)

	// Merge #1
	table, rest, err := mergeEarliest(target, drivers)
	if err != nil {
		return nil, fmt.Errorf("merge target: %w", err)
	}
	out.Primary = table.Name
	logger.Info("merged target with earliest driver", "primary", out.Primary, "rows", table.Len(), "columns", table.Names())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Decompose
	series, err := table.Series(targetName)
	if err != nil {
		return nil, err
	}
	res, err := stl.Decompose(series, cfg.Period, cfg.STL)
	if err != nil {
		return nil, fmt.Errorf("decompose %q: %w", targetName, err)
	}
	out.Decomposition = res
	logger.Info("decomposed target",
		"observations", res.Data.Len(),
		"periodic", res.Periodic,
		"iterations", res.Iterations,
		"converged", res.Converged)
	if !res.Converged {
		logger.Warn("decomposition did not converge", "max_iterations", res.Config.MaxInnerIterations)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Adjust
	if out.Detrended, err = stl.Adjust(res.Data, res, stl.AdjustTrend); err != nil {
		return nil, fmt.Errorf("adjust: %w", err)
	}
	if out.Random, err = stl.Adjust(res.Data, res, stl.AdjustTrendAndSeasonal); err != nil {
		return nil, fmt.Errorf("adjust: %w", err)
	}
	out.Strength = stl.ComponentStrength(res)

	derived := append([]*timeseries.Series{out.Detrended, out.Random}, res.Components()...)
	cols := make([]align.Column, len(derived))
	for i, s := range derived {
		cols[i] = align.Column{Name: s.Name, Role: align.RoleValue, Values: s.Values}
		out.Derived = append(out.Derived, s.Name)
	}
	components, err := align.New("components", res.Data.Timestamps, cols...)
	if err != nil {
		return nil, err
	}
	if table, err = align.Merge(align.Left(0), table, components); err != nil {
		return nil, fmt.Errorf("append components: %w", err)
	}
	logger.Info("appended derived columns",
		"columns", out.Derived,
		"trend_strength", out.Strength.Trend,
		"seasonal_strength", out.Strength.Seasonal)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge #2
	if len(rest) > 0 {
		policy := align.Left(0)
		if cfg.Join == align.JoinInner {
			policy = align.Inner()
		}
		merged, err := align.Merge(policy, append([]*align.Table{table}, rest...)...)
		if err != nil {
			return nil, fmt.Errorf("merge drivers: %w", err)
		}
		merged.Name = table.Name
		table = merged
		logger.Info("merged remaining drivers", "join", cfg.Join, "rows", table.Len(), "drivers", len(rest))
	}
	out.Table = table

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fit
	sel := regression.Predictors(cfg.Predictors...)
	if len(cfg.Predictors) == 0 {
		sel = regression.AllOtherNumeric(append(slices.Clone(out.Derived), cfg.Exclude...)...)
	}
	model, err := regression.Fit(table, targetName, sel)
	if err != nil {
		return nil, fmt.Errorf("fit %q: %w", targetName, err)
	}
	out.Model = model
	logger.Info("fitted regression",
		"predictors", model.Predictors,
		"n_obs", model.NObs,
		"excluded_rows", model.ExcludedRows,
		"r_squared", model.RSquared)
	if model.ExcludedRows > 0 {
		logger.Debug("rows dropped from fit", "timestamps", model.ExcludedTimestamps)
	}

	// Diagnostics
	residuals := model.Residuals().Values
	out.ResidualADF = stats.ADF(residuals, cfg.ADFLags)
	out.ResidualACF = stats.ACFWithConfidence(residuals, stats.DefaultLjungBoxLags(len(residuals), cfg.Period))
	if out.ResidualADF != nil && !out.ResidualADF.IsStationary {
		logger.Warn("regression residuals look non-stationary",
			"adf_statistic", out.ResidualADF.Statistic,
			"p_value", out.ResidualADF.PValue)
	}

	logger.Info("run finished", "duration", time.Since(started))
	return out, nil
}

// mergeEarliest left-joins the target with the driver whose first
// observation comes earliest. The primary of the join is whichever of the
// two starts first, the target on ties. It returns the merged table and the
// drivers not yet merged, in input order.
func mergeEarliest(target *align.Table, drivers []*align.Table) (*align.Table, []*align.Table, error) {
	if len(drivers) == 0 {
		t, err := align.Merge(align.Left(0), target)
		return t, nil, err
	}

	earliest := -1
	var earliestStart time.Time
	for i, d := range drivers {
		start, ok := d.Start()
		if !ok {
			return nil, nil, &align.EmptyInputError{Source: d.Name}
		}
		if earliest < 0 || start.Before(earliestStart) {
			earliest, earliestStart = i, start
		}
	}

	primary := 0
	if targetStart, ok := target.Start(); !ok {
		return nil, nil, &align.EmptyInputError{Source: target.Name}
	} else if earliestStart.Before(targetStart) {
		primary = 1
	}

	merged, err := align.Merge(align.Left(primary), target, drivers[earliest])
	if err != nil {
		return nil, nil, err
	}

	rest := make([]*align.Table, 0, len(drivers)-1)
	rest = append(rest, drivers[:earliest]...)
	rest = append(rest, drivers[earliest+1:]...)
	return merged, rest, nil
}
