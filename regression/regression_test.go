package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/gostl/align"
	"github.com/sartorproj/gostl/timeseries"
)

func table(t *testing.T, n int, cols ...align.Column) *align.Table {
	t.Helper()
	ts := timeseries.New(make([]float64, n)).Timestamps
	tbl, err := align.New("drivers", ts, cols...)
	require.NoError(t, err)
	return tbl
}

func column(name string, n int, f func(i int) float64) align.Column {
	values := make([]float64, n)
	for i := range values {
		values[i] = f(i)
	}
	return align.Column{Name: name, Values: values}
}

func x1(i int) float64 { return float64(i) }
func x2(i int) float64 { return float64((i * i) % 7) }

func exactTable(t *testing.T, n int) *align.Table {
	return table(t, n,
		column("y", n, func(i int) float64 { return 3 + 2*x1(i) - 0.5*x2(i) }),
		column("x1", n, x1),
		column("x2", n, x2),
	)
}

func TestFitRecoversExactCoefficients(t *testing.T) {
	m, err := Fit(exactTable(t, 12), "y", Predictors("x1", "x2"))
	require.NoError(t, err)

	intercept, err := m.Coefficient(Intercept)
	require.NoError(t, err)
	b1, err := m.Coefficient("x1")
	require.NoError(t, err)
	b2, err := m.Coefficient("x2")
	require.NoError(t, err)

	assert.InDelta(t, 3.0, intercept, 1e-8)
	assert.InDelta(t, 2.0, b1, 1e-8)
	assert.InDelta(t, -0.5, b2, 1e-8)
	assert.InDelta(t, 1.0, m.RSquared, 1e-10)
	assert.Equal(t, 12, m.NObs)
	assert.Equal(t, 0, m.ExcludedRows)
	assert.Equal(t, []string{Intercept, "x1", "x2"}, m.Terms())
}

func TestFitCompleteCaseAnalysis(t *testing.T) {
	n := 10
	tbl := table(t, n,
		column("y", n, func(i int) float64 { return 1 + x1(i) + 0.3*x2(i) + float64(i%3)/10 }),
		column("x1", n, func(i int) float64 {
			if i == 5 {
				return math.NaN()
			}
			return x1(i)
		}),
		column("x2", n, x2),
	)

	m, err := Fit(tbl, "y", Predictors("x1", "x2"))
	require.NoError(t, err)

	assert.Equal(t, 1, m.ExcludedRows)
	assert.Equal(t, 9, m.NObs)
	require.Len(t, m.ExcludedTimestamps, 1)
	assert.True(t, m.ExcludedTimestamps[0].Equal(tbl.Timestamps[5]))

	res := m.Residuals()
	assert.Equal(t, 9, res.Len())
	for _, ts := range res.Timestamps {
		assert.False(t, ts.Equal(tbl.Timestamps[5]), "excluded row must not carry a residual")
	}
}

func TestFitCollinearPredictor(t *testing.T) {
	n := 10
	tbl := table(t, n,
		column("y", n, func(i int) float64 { return float64(i * i) }),
		column("x1", n, x1),
		column("x3", n, func(i int) float64 { return 2 * x1(i) }),
	)

	_, err := Fit(tbl, "y", Predictors("x1", "x3"))
	require.ErrorIs(t, err, ErrSingularDesign)

	var singular *SingularDesignError
	require.ErrorAs(t, err, &singular)
	assert.Equal(t, "x3", singular.Column)
}

func TestFitNearCollinearPredictor(t *testing.T) {
	n := 20
	tbl := table(t, n,
		column("y", n, func(i int) float64 { return 1 + x1(i) + 0.3*x2(i) }),
		column("a", n, x1),
		column("b", n, func(i int) float64 { return 2*x1(i) + 1e-8*float64(i%3) }),
	)

	_, err := Fit(tbl, "y", Predictors("a", "b"))
	require.ErrorIs(t, err, ErrSingularDesign)

	var singular *SingularDesignError
	require.ErrorAs(t, err, &singular)
	assert.Equal(t, "b", singular.Column)
}

func TestFitFewerRowsThanParameters(t *testing.T) {
	n := 4
	tbl := table(t, n,
		column("y", n, x1),
		column("x1", n, func(i int) float64 {
			if i >= 2 {
				return math.NaN()
			}
			return x1(i)
		}),
		column("x2", n, x2),
	)

	_, err := Fit(tbl, "y", Predictors("x1", "x2"))
	var singular *SingularDesignError
	require.ErrorAs(t, err, &singular)
	assert.Equal(t, 2, singular.Rows)
	assert.Equal(t, 3, singular.Params)
}

func TestFitAllOtherNumeric(t *testing.T) {
	n := 12
	tbl := exactTable(t, n)
	tbl.Columns = append(tbl.Columns, column("period", n, func(i int) float64 { return float64(2000 + i/4) }))
	tbl, err := tbl.WithRole("period", align.RoleIdentifier)
	require.NoError(t, err)

	m, err := Fit(tbl, "y", AllOtherNumeric())
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, m.Predictors)
	assert.Equal(t, []string{align.Key, "period"}, m.ExcludedByConvention)

	m, err = Fit(tbl, "y", AllOtherNumeric("x2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x1"}, m.Predictors)
	assert.ElementsMatch(t, []string{align.Key, "period", "x2"}, m.ExcludedByConvention)
}

func TestFitInterceptOnly(t *testing.T) {
	n := 6
	tbl := table(t, n, column("y", n, func(i int) float64 { return float64(i) }))

	m, err := Fit(tbl, "y", AllOtherNumeric())
	require.NoError(t, err)
	assert.Empty(t, m.Predictors)

	c, err := m.Coefficient(Intercept)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, c, 1e-12)
	assert.True(t, math.IsNaN(m.FStatistic))
}

func TestFitErrors(t *testing.T) {
	tbl := exactTable(t, 12)

	_, err := Fit(tbl, "gdp", Predictors("x1"))
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = Fit(tbl, "y", Predictors("x1", "oil"))
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = Fit(tbl, "y", Predictors("y"))
	assert.Error(t, err)

	_, err = Fit(tbl, "y", Predictors("x1", "x1"))
	assert.Error(t, err)

	_, err = Fit(nil, "y", AllOtherNumeric())
	assert.Error(t, err)

	n := 4
	empty := table(t, n,
		column("y", n, func(int) float64 { return math.NaN() }),
		column("x1", n, x1),
	)
	_, err = Fit(empty, "y", AllOtherNumeric())
	assert.ErrorIs(t, err, align.ErrEmptyInput)
}

func TestFitStatistics(t *testing.T) {
	n := 24
	noise := func(i int) float64 { return float64((i*7)%5-2) / 4 }
	tbl := table(t, n,
		column("y", n, func(i int) float64 { return 1 + 0.8*x1(i) + 0.2*x2(i) + noise(i) }),
		column("x1", n, x1),
		column("x2", n, x2),
	)

	m, err := Fit(tbl, "y", Predictors("x1", "x2"))
	require.NoError(t, err)

	assert.Equal(t, 2, m.DFModel)
	assert.Equal(t, n-3, m.DFResidual)
	assert.Greater(t, m.RSquared, 0.9)
	assert.Less(t, m.AdjRSquared, m.RSquared)
	assert.Less(t, m.FPValue, 1e-6)
	assert.Greater(t, m.ResidualStdError, 0.0)
	assert.Less(t, m.AIC, m.BIC)
	assert.Greater(t, m.AICc, m.AIC)
	assert.False(t, math.IsNaN(m.DurbinWatson))

	for _, c := range m.Coefficients() {
		assert.InDelta(t, c.Estimate/c.StdError, c.TValue, 1e-9, c.Term)
		assert.GreaterOrEqual(t, c.PValue, 0.0)
		assert.LessOrEqual(t, c.PValue, 1.0)
	}

	fitted := m.Fitted()
	res := m.Residuals()
	y, err := tbl.Column("y")
	require.NoError(t, err)
	for i := range fitted.Values {
		assert.InDelta(t, y.Values[i], fitted.Values[i]+res.Values[i], 1e-9)
	}
	assert.Equal(t, "y_fitted", fitted.Name)
	assert.Equal(t, "y_residual", res.Name)

	s := m.Summary()
	require.NotNil(t, s.LjungBox)
	assert.Equal(t, 4, s.LjungBox.Lags)
	assert.Len(t, s.Coefficients, 3)
}

func TestPredict(t *testing.T) {
	m, err := Fit(exactTable(t, 12), "y", Predictors("x1", "x2"))
	require.NoError(t, err)

	got, err := m.Predict(map[string]float64{"x1": 10, "x2": 4})
	require.NoError(t, err)
	assert.InDelta(t, 3+20-2, got, 1e-8)

	_, err = m.Predict(map[string]float64{"x1": 10})
	assert.Error(t, err)
}

func TestFitDoesNotMutateTable(t *testing.T) {
	tbl := exactTable(t, 12)
	before := tbl.Copy()

	_, err := Fit(tbl, "y", AllOtherNumeric())
	require.NoError(t, err)
	assert.Equal(t, before, tbl)
}

func TestSelectionString(t *testing.T) {
	assert.Equal(t, "all_other_numeric", AllOtherNumeric().String())
	assert.Equal(t, "all_other_numeric (excluding a, b)", AllOtherNumeric("a", "b").String())
	assert.Equal(t, "x1, x2", Predictors("x1", "x2").String())
}
