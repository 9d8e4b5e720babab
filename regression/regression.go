// Package regression fits ordinary least squares models on aligned tables.
package regression

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/gostl/align"
	"github.com/sartorproj/gostl/stats"
	"github.com/sartorproj/gostl/timeseries"
)

// Intercept is the term name of the constant.
const Intercept = "(Intercept)"

var (
	// ErrUnknownColumn is returned for a target or predictor the table lacks.
	ErrUnknownColumn = align.ErrUnknownColumn
	// ErrSingularDesign is matched by every SingularDesignError.
	ErrSingularDesign = errors.New("singular design")
)

// SingularDesignError reports a predictor that is a linear combination of
// the intercept and the predictors before it, or a fit with fewer complete
// rows than parameters.
type SingularDesignError struct {
	Column string
	Rows   int
	Params int
}

func (e *SingularDesignError) Error() string {
	if e.Rows < e.Params {
		return fmt.Sprintf("singular design: %d complete rows for %d parameters (cannot estimate %q)", e.Rows, e.Params, e.Column)
	}
	return fmt.Sprintf("singular design: column %q is collinear with earlier terms", e.Column)
}

// Is reports whether target is ErrSingularDesign.
func (e *SingularDesignError) Is(target error) bool { return target == ErrSingularDesign }

// Model is a fitted linear regression. It is not modified after Fit.
type Model struct {
	Target               string
	Predictors           []string
	ExcludedByConvention []string

	RSquared         float64
	AdjRSquared      float64
	FStatistic       float64
	FPValue          float64
	ResidualStdError float64
	DFModel          int
	DFResidual       int

	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64

	DurbinWatson float64 // NaN when undefined

	NObs               int
	ExcludedRows       int
	ExcludedTimestamps []time.Time

	terms      []string
	coef       []float64
	stdErr     []float64
	tValue     []float64
	pValue     []float64
	timestamps []time.Time
	fitted     []float64
	residuals  []float64
}

// Coefficient is one row of the coefficient table.
type Coefficient struct {
	Term     string
	Estimate float64
	StdError float64
	TValue   float64
	PValue   float64
}

// Fit regresses target on the selected predictors of table with an
// intercept, using the rows where the target and every predictor are
// observed.
func Fit(table *align.Table, target string, sel Selection) (*Model, error) {
	if table == nil {
		return nil, errors.New("nil table")
	}
	yCol, err := table.Column(target)
	if err != nil {
		return nil, err
	}
	predictors, excluded, err := sel.resolve(table, target)
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, len(predictors))
	for j, name := range predictors {
		c, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = c.Values
	}

	var rows []int
	var dropped []time.Time
	for i := range table.Timestamps {
		if complete(i, yCol.Values, cols) {
			rows = append(rows, i)
		} else {
			dropped = append(dropped, table.Timestamps[i])
		}
	}
	if len(rows) == 0 {
		return nil, &align.EmptyInputError{Source: table.Name}
	}

	n, p := len(rows), len(predictors)+1
	terms := append([]string{Intercept}, predictors...)
	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	timestamps := make([]time.Time, n)
	for r, i := range rows {
		x.Set(r, 0, 1)
		for j, c := range cols {
			x.Set(r, j+1, c[i])
		}
		y[r] = yCol.Values[i]
		timestamps[r] = table.Timestamps[i]
	}

	ls, err := stats.LeastSquares(x, y)
	if err != nil {
		var rank *stats.RankError
		if errors.As(err, &rank) {
			return nil, &SingularDesignError{Column: terms[rank.Column], Rows: n, Params: p}
		}
		return nil, err
	}

	m := &Model{
		Target:               target,
		Predictors:           predictors,
		ExcludedByConvention: excluded,
		DFModel:              p - 1,
		DFResidual:           ls.DF,
		NObs:                 n,
		ExcludedRows:         len(dropped),
		ExcludedTimestamps:   dropped,
		terms:                terms,
		coef:                 ls.Coefficients,
		stdErr:               ls.StdErrors,
		timestamps:           timestamps,
		fitted:               ls.Fitted,
		residuals:            ls.Residuals,
	}
	m.testCoefficients()
	m.goodnessOfFit(y, ls)
	return m, nil
}

func complete(i int, y []float64, cols [][]float64) bool {
	if math.IsNaN(y[i]) {
		return false
	}
	for _, c := range cols {
		if math.IsNaN(c[i]) {
			return false
		}
	}
	return true
}

// testCoefficients computes t statistics and two-sided p-values.
func (m *Model) testCoefficients() {
	p := len(m.coef)
	m.tValue = make([]float64, p)
	m.pValue = make([]float64, p)
	if m.DFResidual == 0 {
		for j := range m.coef {
			m.tValue[j] = math.NaN()
			m.pValue[j] = math.NaN()
		}
		return
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.DFResidual)}
	for j := range m.coef {
		m.tValue[j] = m.coef[j] / m.stdErr[j]
		m.pValue[j] = 2 * dist.Survival(math.Abs(m.tValue[j]))
	}
}

func (m *Model) goodnessOfFit(y []float64, ls *stats.LeastSquaresResult) {
	n := float64(m.NObs)
	df := float64(m.DFResidual)
	k := float64(m.DFModel)

	mean := stat.Mean(y, nil)
	centered := make([]float64, len(y))
	copy(centered, y)
	floats.AddConst(-mean, centered)
	tss := floats.Dot(centered, centered)

	m.RSquared, m.AdjRSquared = math.NaN(), math.NaN()
	m.FStatistic, m.FPValue = math.NaN(), math.NaN()
	m.ResidualStdError = math.Sqrt(ls.Sigma2)
	if tss > 0 {
		m.RSquared = 1 - ls.RSS/tss
		if df > 0 {
			m.AdjRSquared = 1 - (1-m.RSquared)*(n-1)/df
		}
	}
	if tss > 0 && df > 0 && k > 0 {
		m.FStatistic = ((tss - ls.RSS) / k) / (ls.RSS / df)
		m.FPValue = distuv.F{D1: k, D2: df}.Survival(m.FStatistic)
	}

	// Error variance counts as a parameter.
	ic := stats.CalculateIC(stats.GaussianLogLikelihood(ls.RSS, m.NObs), m.NObs, len(m.coef)+1)
	m.LogLik, m.AIC, m.AICc, m.BIC = ic.LogLik, ic.AIC, ic.AICc, ic.BIC

	m.DurbinWatson = math.NaN()
	if dw := stats.DurbinWatson(ls.Residuals); dw != nil {
		m.DurbinWatson = dw.Statistic
	}
}

// Terms returns the coefficient names, intercept first.
func (m *Model) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Coefficients returns the coefficient table, intercept first.
func (m *Model) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.coef))
	for j := range m.coef {
		out[j] = Coefficient{
			Term:     m.terms[j],
			Estimate: m.coef[j],
			StdError: m.stdErr[j],
			TValue:   m.tValue[j],
			PValue:   m.pValue[j],
		}
	}
	return out
}

// Coefficient returns the estimate for term.
func (m *Model) Coefficient(term string) (float64, error) {
	for j, t := range m.terms {
		if t == term {
			return m.coef[j], nil
		}
	}
	return 0, fmt.Errorf("%w: no term %q in model for %q", ErrUnknownColumn, term, m.Target)
}

// Residuals returns the residuals on the retained rows.
func (m *Model) Residuals() *timeseries.Series {
	return m.series(m.residuals, "residual")
}

// Fitted returns the fitted values on the retained rows.
func (m *Model) Fitted() *timeseries.Series {
	return m.series(m.fitted, "fitted")
}

func (m *Model) series(values []float64, suffix string) *timeseries.Series {
	ts := make([]time.Time, len(m.timestamps))
	copy(ts, m.timestamps)
	vals := make([]float64, len(values))
	copy(vals, values)
	return &timeseries.Series{Timestamps: ts, Values: vals, Name: m.Target + "_" + suffix}
}

// Predict evaluates the fitted equation for one set of predictor values.
// Every predictor must be present in values.
func (m *Model) Predict(values map[string]float64) (float64, error) {
	yhat := m.coef[0]
	for j, name := range m.Predictors {
		v, ok := values[name]
		if !ok {
			return math.NaN(), fmt.Errorf("missing value for predictor %q", name)
		}
		yhat += m.coef[j+1] * v
	}
	return yhat, nil
}

// Summary returns a summary of the fitted model.
type Summary struct {
	Target           string
	Predictors       []string
	Excluded         []string
	Coefficients     []Coefficient
	RSquared         float64
	AdjRSquared      float64
	FStatistic       float64
	FPValue          float64
	ResidualStdError float64
	DFModel          int
	DFResidual       int
	LogLik           float64
	AIC              float64
	AICc             float64
	BIC              float64
	DurbinWatson     float64
	LjungBox         *stats.LjungBoxResult
	NObs             int
	ExcludedRows     int
}

// Summary returns a summary of the fitted model, including a Ljung-Box test
// on the residuals at lag min(10, n/5).
func (m *Model) Summary() *Summary {
	lags := max(min(10, m.NObs/5), 1)
	return &Summary{
		Target:           m.Target,
		Predictors:       m.Predictors,
		Excluded:         m.ExcludedByConvention,
		Coefficients:     m.Coefficients(),
		RSquared:         m.RSquared,
		AdjRSquared:      m.AdjRSquared,
		FStatistic:       m.FStatistic,
		FPValue:          m.FPValue,
		ResidualStdError: m.ResidualStdError,
		DFModel:          m.DFModel,
		DFResidual:       m.DFResidual,
		LogLik:           m.LogLik,
		AIC:              m.AIC,
		AICc:             m.AICc,
		BIC:              m.BIC,
		DurbinWatson:     m.DurbinWatson,
		LjungBox:         stats.LjungBox(m.residuals, lags, 0),
		NObs:             m.NObs,
		ExcludedRows:     m.ExcludedRows,
	}
}
