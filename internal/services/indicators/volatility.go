package indicators

import "math"

// BollingerResult holds the band series and the width as a percent of
// the middle band.
type BollingerResult struct {
	Mid      []float64
	Upper    []float64
	Lower    []float64
	WidthPct []float64
}

// Bollinger computes Bollinger bands over an SMA(period) middle band
// with stdDev population standard deviations.
func Bollinger(closes []float64, period int, stdDev float64) BollingerResult {
	n := len(closes)
	res := BollingerResult{
		Mid:      SMA(closes, period),
		Upper:    nanSlice(n),
		Lower:    nanSlice(n),
		WidthPct: nanSlice(n),
	}
	if period <= 0 || n < period {
		return res
	}
	for i := period - 1; i < n; i++ {
		mid := res.Mid[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mid
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		res.Upper[i] = mid + stdDev*sd
		res.Lower[i] = mid - stdDev*sd
		if mid != 0 {
			res.WidthPct[i] = (res.Upper[i] - res.Lower[i]) / mid * 100
		}
	}
	return res
}

// TrueRange computes the true range series. Index 0 is NaN since it has
// no prior close.
func TrueRange(highs, lows, closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the Wilder average true range: the first period true
// ranges seed a simple average, subsequent values use
// prev*(period-1)/period + tr/period. First valid value at index
// period.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if period <= 0 || n < period+1 {
		return out
	}
	tr := TrueRange(highs, lows, closes)
	seed := 0.0
	for i := 1; i <= period; i++ {
		seed += tr[i]
	}
	prev := seed / float64(period)
	out[period] = prev
	p := float64(period)
	for i := period + 1; i < n; i++ {
		prev = (prev*(p-1) + tr[i]) / p
		out[i] = prev
	}
	return out
}
