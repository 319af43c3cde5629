// Package align resamples telemetry series onto a target time grid.
//
// Source times are expected in ascending order. Interpolate drops samples
// that break the order rather than failing. Times are CXC seconds.
package align

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// DefaultWindow is the moving-average window used when none is given.
const DefaultWindow = 5

// BracketTimes reports, for each output time, whether it lies inside the
// closed interval spanned by the first and last input times.
func BracketTimes(timesIn, timesOut []float64) []bool {
	ok := make([]bool, len(timesOut))
	if len(timesIn) == 0 {
		return ok
	}
	lo, hi := timesIn[0], timesIn[len(timesIn)-1]
	for i, t := range timesOut {
		ok[i] = t >= lo && t <= hi
	}
	return ok
}

// Interpolate linearly interpolates dataIn, sampled at timesIn, onto
// timesOut.
//
// Outside the input range the result is clamped to the first or last input
// value; use BracketTimes or Align to reject those points instead. When
// several samples share a timestamp the last one wins. Samples with a NaN
// time or a time earlier than the last kept sample are dropped. A single
// input sample yields a constant output, an empty input yields NaN, and a
// NaN output time yields NaN.
func Interpolate(timesIn, timesOut, dataIn []float64) []float64 {
	out := make([]float64, len(timesOut))
	xs, ys := dedupe(timesIn, dataIn)
	switch len(xs) {
	case 0:
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	case 1:
		for i, t := range timesOut {
			out[i] = ys[0]
			if math.IsNaN(t) {
				out[i] = math.NaN()
			}
		}
		return out
	}

	var pl interp.PiecewiseLinear
	// xs is strictly increasing after dedupe, so Fit cannot fail.
	_ = pl.Fit(xs, ys)
	lo, hi := xs[0], xs[len(xs)-1]
	for i, t := range timesOut {
		switch {
		case math.IsNaN(t):
			out[i] = math.NaN()
		case t <= lo:
			out[i] = ys[0]
		case t >= hi:
			out[i] = ys[len(ys)-1]
		default:
			out[i] = pl.Predict(t)
		}
	}
	return out
}

// dedupe returns copies of xs and ys with strictly increasing times.
// Repeated times collapse onto the last sample at that time; NaN times and
// times before the last kept one are dropped. Extra trailing values in the
// longer slice are ignored.
func dedupe(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	outX := make([]float64, 0, n)
	outY := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) {
			continue
		}
		if k := len(outX); k > 0 {
			if xs[i] == outX[k-1] {
				outY[k-1] = ys[i]
				continue
			}
			if xs[i] < outX[k-1] {
				continue
			}
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

// Align interpolates dataIn onto timesOut and masks every output time that
// falls outside the input span. Masked values are NaN.
func Align(timesIn, dataIn, timesOut []float64) (values []float64, valid []bool) {
	values = Interpolate(timesIn, timesOut, dataIn)
	valid = BracketTimes(timesIn, timesOut)
	for i, ok := range valid {
		if !ok {
			values[i] = math.NaN()
		}
	}
	return values, valid
}

// MovingAverage smooths a with a centred flat window of length n.
//
// n <= 0 selects DefaultWindow and an even n is widened to the next odd
// length. The series is extended at both ends by odd reflection about the
// end samples (2*a[0]-a[k]), so the output has the same length as a and a
// linear trend passes through unchanged. If a is shorter than the window,
// the window shrinks to the longest odd length that fits; windows shorter
// than three samples return a copy of a.
func MovingAverage(a []float64, n int) []float64 {
	if n <= 0 {
		n = DefaultWindow
	}
	if n%2 == 0 {
		n++
	}
	m := len(a)
	if m < n {
		n = m
		if n%2 == 0 {
			n--
		}
	}
	out := make([]float64, m)
	if n < 3 {
		copy(out, a)
		return out
	}

	half := n / 2
	padded := make([]float64, m+2*half)
	for k := 1; k <= half; k++ {
		padded[half-k] = 2*a[0] - a[k]
		padded[half+m-1+k] = 2*a[m-1] - a[m-1-k]
	}
	copy(padded[half:], a)

	w := float64(n)
	for i := range out {
		out[i] = floats.Sum(padded[i:i+n]) / w
	}
	return out
}

// SearchSorted returns, for each value in v, the index at which it would be
// inserted into the ascending slice a to keep it sorted, placing it before
// any equal elements.
func SearchSorted(a, v []float64) []int {
	idx := make([]int, len(v))
	for i, x := range v {
		idx[i] = sort.SearchFloat64s(a, x)
	}
	return idx
}
