// Package indicators implements pure, stateless technical indicators
// over price series. Every function follows its textbook recurrence;
// positions with fewer data points than the lookback carry NaN rather
// than a fabricated number, and short series never error.
package indicators

import "math"

// NaN is the sentinel for "not enough data".
var NaN = math.NaN()

// Valid reports whether an indicator value is usable.
func Valid(v float64) bool { return !math.IsNaN(v) }

// SMA computes the simple moving average series. The first period-1
// positions are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average series, seeded with the
// SMA of the first period values.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	prev := seed / float64(period)
	out[period-1] = prev
	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

// Last returns the final value of a series, or NaN for an empty one.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return NaN
	}
	return series[len(series)-1]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = NaN
	}
	return out
}
