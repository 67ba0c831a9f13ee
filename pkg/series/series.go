// Package series provides helpers for shaping dense price series into
// display-ready ones. It uses the cinar/indicator library for the moving
// average computation.
package series

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Decimate keeps every nth element of in, starting with the first. It returns
// in unchanged when n is 1 or less.
func Decimate[T any](in []T, n int) []T {
	if n <= 1 {
		return in
	}
	out := make([]T, 0, len(in)/n+1)
	for i := 0; i < len(in); i += n {
		out = append(out, in[i])
	}
	return out
}

// SMA computes a simple moving average over values with the given window.
// The result holds len(values)-window+1 points aligned to the end of the
// input; it is nil when the input is shorter than the window.
func SMA(values []float64, window int) []float64 {
	if window < 1 || len(values) < window {
		return nil
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
}
