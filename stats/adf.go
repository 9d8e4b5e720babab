package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test for a unit root with a
// constant and maxLag lagged differences (maxLag <= 0 picks
// floor((n-1)^(1/3))).
// H0: the series has a unit root. It returns nil when fewer than 10
// observations remain for the test regression or the regression is singular.
func ADF(values []float64, maxLag int) *ADFResult {
	n := len(values)
	if n < 10 {
		return nil
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	maxLag = min(maxLag, n-2)

	diff := make([]float64, n-1)
	floats.SubTo(diff, values[1:], values[:n-1])

	// dy_t = a + b*y_{t-1} + sum g_i*dy_{t-i}
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}
	y := make([]float64, nObs)
	x := mat.NewDense(nObs, 2+maxLag, nil)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, values[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	fit, err := LeastSquares(x, y)
	if err != nil || math.IsNaN(fit.StdErrors[1]) || fit.StdErrors[1] == 0 {
		return nil
	}

	tStat := fit.Coefficients[1] / fit.StdErrors[1]
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// MacKinnon (1994) response surface for the constant-only regression.
var (
	adfSmallP = []float64{2.1659, 1.4412, 0.038269}
	adfLargeP = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

const (
	adfTauMax  = 2.74
	adfTauMin  = -18.83
	adfTauStar = -1.61
)

// mackinnonPValue approximates the asymptotic p-value of an ADF statistic.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat > adfTauMax:
		return 1
	case stat < adfTauMin:
		return 0
	}
	coef := adfLargeP
	if stat <= adfTauStar {
		coef = adfSmallP
	}
	z, pow := 0.0, 1.0
	for _, c := range coef {
		z += c * pow
		pow *= stat
	}
	return distuv.UnitNormal.CDF(z)
}
