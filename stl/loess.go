package stl

import (
	"math"
	"sort"
)

// est fits a locally weighted polynomial of degree 0 or 1 at position xs
// using y[nleft..nright] with tricube neighbourhood weights. Positions are
// array indices, so xs may fall one step outside the data when the caller
// extrapolates. rw holds optional robustness weights. w is scratch space of
// len(y). ok is false when every weight in the window is zero.
func est(y []float64, window, degree int, xs float64, nleft, nright int, w, rw []float64) (ys float64, ok bool) {
	n := len(y)
	rng := float64(n - 1)

	h := math.Max(xs-float64(nleft), float64(nright)-xs)
	if window > n {
		h += float64((window - n) / 2)
	}
	h9 := 0.999 * h
	h1 := 0.001 * h

	a := 0.0
	for j := nleft; j <= nright; j++ {
		w[j] = 0
		r := math.Abs(float64(j) - xs)
		if r > h9 {
			continue
		}
		if r <= h1 {
			w[j] = 1
		} else {
			u := r / h
			u = 1 - u*u*u
			w[j] = u * u * u
		}
		if rw != nil {
			w[j] *= rw[j]
		}
		a += w[j]
	}
	if a <= 0 {
		return 0, false
	}

	for j := nleft; j <= nright; j++ {
		w[j] /= a
	}

	if h > 0 && degree > 0 {
		a = 0
		for j := nleft; j <= nright; j++ {
			a += w[j] * float64(j)
		}
		b := xs - a
		c := 0.0
		for j := nleft; j <= nright; j++ {
			d := float64(j) - a
			c += w[j] * d * d
		}
		if math.Sqrt(c) > 0.001*rng {
			b /= c
			for j := nleft; j <= nright; j++ {
				w[j] *= b*(float64(j)-a) + 1
			}
		}
	}

	for j := nleft; j <= nright; j++ {
		ys += w[j] * y[j]
	}
	return ys, true
}

// smooth evaluates a loess fit of y at every index and writes it to out.
// Where the fit is undefined the input value is kept.
func smooth(y []float64, window, degree int, rw, out []float64) {
	n := len(y)
	if n < 2 {
		copy(out, y)
		return
	}
	w := make([]float64, n)

	if window >= n {
		for i := 0; i < n; i++ {
			if v, ok := est(y, window, degree, float64(i), 0, n-1, w, rw); ok {
				out[i] = v
			} else {
				out[i] = y[i]
			}
		}
		return
	}

	half := (window + 1) / 2
	nleft, nright := 0, window-1
	for i := 0; i < n; i++ {
		if i+1 > half && nright != n-1 {
			nleft++
			nright++
		}
		if v, ok := est(y, window, degree, float64(i), nleft, nright, w, rw); ok {
			out[i] = v
		} else {
			out[i] = y[i]
		}
	}
}

// smoothCycles smooths each cycle-subseries of y (every period-th value
// starting at each phase) and extends it by one point at both ends.
// season must have length len(y)+2*period; entry m*period+j holds the
// m-th point (counting the leading extension) of phase j.
func smoothCycles(y []float64, period, window, degree int, rw, season []float64) {
	n := len(y)
	for j := 0; j < period; j++ {
		k := (n-j-1)/period + 1

		sub := make([]float64, k)
		var subRW []float64
		if rw != nil {
			subRW = make([]float64, k)
		}
		for i := 0; i < k; i++ {
			sub[i] = y[j+i*period]
			if rw != nil {
				subRW[i] = rw[j+i*period]
			}
		}

		fit := make([]float64, k+2)
		smooth(sub, window, degree, subRW, fit[1:k+1])

		w := make([]float64, k)
		nright := min(window, k) - 1
		if v, ok := est(sub, window, degree, -1, 0, nright, w, subRW); ok {
			fit[0] = v
		} else {
			fit[0] = fit[1]
		}
		nleft := max(0, k-window)
		if v, ok := est(sub, window, degree, float64(k), nleft, k-1, w, subRW); ok {
			fit[k+1] = v
		} else {
			fit[k+1] = fit[k]
		}

		for m := 0; m < k+2; m++ {
			season[m*period+j] = fit[m]
		}
	}
}

// movingAverage returns the trailing moving average of x over window,
// of length len(x)-window+1.
func movingAverage(x []float64, window int) []float64 {
	n := len(x) - window + 1
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(window)
	for i := 1; i < n; i++ {
		sum += x[i+window-1] - x[i-1]
		out[i] = sum / float64(window)
	}
	return out
}

// lowPass applies moving averages of length period, period and 3 to the
// extended cycle-subseries, then a loess smooth. The result has
// len(season)-2*period points.
func lowPass(season []float64, period, window, degree int) []float64 {
	x := movingAverage(season, period)
	x = movingAverage(x, period)
	x = movingAverage(x, 3)
	out := make([]float64, len(x))
	smooth(x, window, degree, nil, out)
	return out
}

// robustnessWeights returns bisquare weights of the absolute remainders,
// scaled by six times their median.
func robustnessWeights(y, fit []float64) []float64 {
	n := len(y)
	r := make([]float64, n)
	for i := range y {
		r[i] = math.Abs(y[i] - fit[i])
	}
	cmad := 6 * median(r)
	c9 := 0.999 * cmad
	c1 := 0.001 * cmad

	rw := make([]float64, n)
	for i, v := range r {
		switch {
		case v <= c1:
			rw[i] = 1
		case v <= c9:
			u := v / cmad
			u = 1 - u*u
			rw[i] = u * u
		default:
			rw[i] = 0
		}
	}
	return rw
}

// median calculates the median of a slice.
func median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
