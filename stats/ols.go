package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankTol is the smallest |R_jj| relative to the norm of column j that still
// counts as linearly independent. Columns that are collinear to within
// rounding noise of the data fall below it.
const rankTol = 1e-7

// ErrRankDeficient is matched by every RankError.
var ErrRankDeficient = errors.New("design matrix is rank deficient")

// RankError reports the first design column that is a linear combination of
// the columns before it, or that cannot be estimated because there are fewer
// rows than columns.
type RankError struct {
	Column int
	Rows   int
	Cols   int
}

func (e *RankError) Error() string {
	if e.Rows < e.Cols {
		return fmt.Sprintf("design matrix is rank deficient: %d rows for %d columns", e.Rows, e.Cols)
	}
	return fmt.Sprintf("design matrix is rank deficient at column %d", e.Column)
}

// Is reports whether target is ErrRankDeficient.
func (e *RankError) Is(target error) bool { return target == ErrRankDeficient }

// LeastSquaresResult holds an ordinary least squares fit.
type LeastSquaresResult struct {
	Coefficients []float64
	StdErrors    []float64 // NaN when there are no residual degrees of freedom
	Fitted       []float64
	Residuals    []float64
	RSS          float64
	DF           int     // Residual degrees of freedom, rows - columns
	Sigma2       float64 // RSS / DF, NaN when DF is 0
	Cov          *mat.SymDense
}

// LeastSquares solves min ||y - x*b|| with a Householder QR factorization of
// x. A column whose R diagonal is negligible relative to its own norm is
// reported as a *RankError, as is a design with fewer rows than columns.
func LeastSquares(x *mat.Dense, y []float64) (*LeastSquaresResult, error) {
	n, p := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("response has %d values for %d design rows", len(y), n)
	}
	if p == 0 {
		return nil, errors.New("design matrix has no columns")
	}
	if n < p {
		return nil, &RankError{Column: n, Rows: n, Cols: p}
	}

	var qr mat.QR
	qr.Factorize(x)
	var r mat.Dense
	qr.RTo(&r)

	for j := 0; j < p; j++ {
		norm := mat.Norm(x.ColView(j), 2)
		if norm == 0 || math.Abs(r.At(j, j)) <= rankTol*norm {
			return nil, &RankError{Column: j, Rows: n, Cols: p}
		}
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	var fittedVec mat.VecDense
	fittedVec.MulVec(x, &beta)
	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = fittedVec.AtVec(i)
	}
	residuals := make([]float64, n)
	floats.SubTo(residuals, y, fitted)
	rss := floats.Dot(residuals, residuals)

	res := &LeastSquaresResult{
		Coefficients: make([]float64, p),
		StdErrors:    make([]float64, p),
		Fitted:       fitted,
		Residuals:    residuals,
		RSS:          rss,
		DF:           n - p,
		Sigma2:       math.NaN(),
	}
	for j := range res.Coefficients {
		res.Coefficients[j] = beta.AtVec(j)
		res.StdErrors[j] = math.NaN()
	}
	if res.DF == 0 {
		return res, nil
	}
	res.Sigma2 = rss / float64(res.DF)

	// (X'X)^-1 = R^-1 R^-T
	upper := mat.NewTriDense(p, mat.Upper, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			upper.SetTri(i, j, r.At(i, j))
		}
	}
	var rinv mat.TriDense
	if err := rinv.InverseTri(upper); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("invert R: %w", err)
		}
	}
	cov := mat.NewSymDense(p, nil)
	cov.SymOuterK(res.Sigma2, &rinv)
	res.Cov = cov
	for j := 0; j < p; j++ {
		res.StdErrors[j] = math.Sqrt(cov.At(j, j))
	}
	return res, nil
}

// GaussianLogLikelihood is the maximized log-likelihood of a linear model
// with normal errors given its residual sum of squares over n observations.
func GaussianLogLikelihood(rss float64, n int) float64 {
	nf := float64(n)
	return -nf / 2 * (math.Log(2*math.Pi) + math.Log(rss/nf) + 1)
}
