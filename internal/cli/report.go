package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sartorproj/gostl/pipeline"
	"github.com/sartorproj/gostl/regression"
	"github.com/sartorproj/gostl/stats"
	"github.com/sartorproj/gostl/stl"
	"github.com/sartorproj/gostl/timeseries"
)

// number encodes NaN and infinities as null.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

type seriesReport struct {
	Name   string   `json:"name"`
	Dates  []string `json:"dates"`
	Values []number `json:"values"`
}

func newSeriesReport(s *timeseries.Series) seriesReport {
	r := seriesReport{
		Name:   s.Name,
		Dates:  dates(s.Timestamps),
		Values: make([]number, len(s.Values)),
	}
	for i, v := range s.Values {
		r.Values[i] = number(v)
	}
	return r
}

func dates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(time.DateOnly)
	}
	return out
}

type decompositionReport struct {
	Period           int          `json:"period"`
	Periodic         bool         `json:"periodic"`
	SeasonalWindow   int          `json:"seasonal_window"`
	TrendWindow      int          `json:"trend_window"`
	LowPassWindow    int          `json:"low_pass_window"`
	Robust           bool         `json:"robust"`
	Iterations       int          `json:"iterations"`
	Converged        bool         `json:"converged"`
	TrendStrength    number       `json:"trend_strength"`
	SeasonalStrength number       `json:"seasonal_strength"`
	Seasonal         seriesReport `json:"seasonal"`
	Trend            seriesReport `json:"trend"`
	Remainder        seriesReport `json:"remainder"`
	Detrended        seriesReport `json:"detrended"`
	Random           seriesReport `json:"random"`
}

func newDecompositionReport(res *stl.Result, detrended, random *timeseries.Series, s stl.Strength) decompositionReport {
	return decompositionReport{
		Period:           res.Period,
		Periodic:         res.Periodic,
		SeasonalWindow:   res.Config.SeasonalWindow,
		TrendWindow:      res.Config.TrendWindow,
		LowPassWindow:    res.Config.LowPassWindow,
		Robust:           res.Config.Robust,
		Iterations:       res.Iterations,
		Converged:        res.Converged,
		TrendStrength:    number(s.Trend),
		SeasonalStrength: number(s.Seasonal),
		Seasonal:         newSeriesReport(res.Seasonal),
		Trend:            newSeriesReport(res.Trend),
		Remainder:        newSeriesReport(res.Remainder),
		Detrended:        newSeriesReport(detrended),
		Random:           newSeriesReport(random),
	}
}

type coefficientReport struct {
	Term     string `json:"term"`
	Estimate number `json:"estimate"`
	StdError number `json:"std_error"`
	TValue   number `json:"t_value"`
	PValue   number `json:"p_value"`
}

type testReport struct {
	Statistic number `json:"statistic"`
	PValue    number `json:"p_value"`
	Lags      int    `json:"lags"`
	DOF       int    `json:"dof,omitempty"`
}

type modelReport struct {
	Target               string              `json:"target"`
	Predictors           []string            `json:"predictors"`
	ExcludedByConvention []string            `json:"excluded_by_convention"`
	Coefficients         []coefficientReport `json:"coefficients"`
	RSquared             number              `json:"r_squared"`
	AdjRSquared          number              `json:"adj_r_squared"`
	FStatistic           number              `json:"f_statistic"`
	FPValue              number              `json:"f_p_value"`
	ResidualStdError     number              `json:"residual_std_error"`
	DFModel              int                 `json:"df_model"`
	DFResidual           int                 `json:"df_residual"`
	LogLik               number              `json:"log_lik"`
	AIC                  number              `json:"aic"`
	AICc                 number              `json:"aicc"`
	BIC                  number              `json:"bic"`
	DurbinWatson         number              `json:"durbin_watson"`
	LjungBox             *testReport         `json:"ljung_box,omitempty"`
	NObs                 int                 `json:"n_obs"`
	ExcludedRows         int                 `json:"excluded_rows"`
	ExcludedDates        []string            `json:"excluded_dates"`
	Fitted               seriesReport        `json:"fitted"`
	Residuals            seriesReport        `json:"residuals"`
}

func newModelReport(m *regression.Model) modelReport {
	s := m.Summary()
	r := modelReport{
		Target:               s.Target,
		Predictors:           s.Predictors,
		ExcludedByConvention: s.Excluded,
		RSquared:             number(s.RSquared),
		AdjRSquared:          number(s.AdjRSquared),
		FStatistic:           number(s.FStatistic),
		FPValue:              number(s.FPValue),
		ResidualStdError:     number(s.ResidualStdError),
		DFModel:              s.DFModel,
		DFResidual:           s.DFResidual,
		LogLik:               number(s.LogLik),
		AIC:                  number(s.AIC),
		AICc:                 number(s.AICc),
		BIC:                  number(s.BIC),
		DurbinWatson:         number(s.DurbinWatson),
		NObs:                 s.NObs,
		ExcludedRows:         s.ExcludedRows,
		ExcludedDates:        dates(m.ExcludedTimestamps),
		Fitted:               newSeriesReport(m.Fitted()),
		Residuals:            newSeriesReport(m.Residuals()),
	}
	for _, c := range s.Coefficients {
		r.Coefficients = append(r.Coefficients, coefficientReport{
			Term:     c.Term,
			Estimate: number(c.Estimate),
			StdError: number(c.StdError),
			TValue:   number(c.TValue),
			PValue:   number(c.PValue),
		})
	}
	if lb := s.LjungBox; lb != nil {
		r.LjungBox = &testReport{Statistic: number(lb.Statistic), PValue: number(lb.PValue), Lags: lb.Lags, DOF: lb.DOF}
	}
	return r
}

type adfReport struct {
	Statistic  number `json:"statistic"`
	PValue     number `json:"p_value"`
	Lags       int    `json:"lags"`
	NObs       int    `json:"n_obs"`
	Stationary bool   `json:"stationary"`
}

type runReport struct {
	RunID              string              `json:"run_id"`
	Primary            string              `json:"primary"`
	Rows               int                 `json:"rows"`
	Columns            []string            `json:"columns"`
	Decomposition      decompositionReport `json:"decomposition"`
	Model              modelReport         `json:"model"`
	ResidualADF        *adfReport          `json:"residual_adf,omitempty"`
	SignificantACFLags []int               `json:"significant_acf_lags"`
}

func newRunReport(out *pipeline.Output) runReport {
	r := runReport{
		RunID:              out.RunID,
		Primary:            out.Primary,
		Rows:               out.Table.Len(),
		Columns:            out.Table.Names(),
		Decomposition:      newDecompositionReport(out.Decomposition, out.Detrended, out.Random, out.Strength),
		Model:              newModelReport(out.Model),
		SignificantACFLags: []int{},
	}
	if adf := out.ResidualADF; adf != nil {
		r.ResidualADF = newADFReport(adf)
	}
	if acf := out.ResidualACF; acf != nil {
		if lags := acf.Significant(); lags != nil {
			r.SignificantACFLags = lags
		}
	}
	return r
}

func newADFReport(adf *stats.ADFResult) *adfReport {
	return &adfReport{
		Statistic:  number(adf.Statistic),
		PValue:     number(adf.PValue),
		Lags:       adf.Lags,
		NObs:       adf.NObs,
		Stationary: adf.IsStationary,
	}
}

// writeReport writes v as indented JSON to dest, or to the command's output
// when dest is "-".
func writeReport(cmd *cobra.Command, dest string, v any) error {
	var w io.Writer = cmd.OutOrStdout()
	if dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// summaryWriter keeps stdout clean for the JSON report when it goes there.
func summaryWriter(cmd *cobra.Command, dest string) io.Writer {
	if dest == "-" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
