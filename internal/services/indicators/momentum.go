package indicators

import "math"

// RSI computes the Wilder relative strength index. Gains and losses are
// seeded with a simple average over the first period deltas, then
// smoothed with prev*(period-1)/period + new/period. The first valid
// value sits at index period.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the three MACD series.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes MACD(fast, slow, signal). Line is valid once the slow
// EMA is; Signal is the EMA of the valid line values.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{Line: nanSlice(n), Signal: nanSlice(n), Histogram: nanSlice(n)}
	if n < slow {
		return res
	}
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	valid := make([]float64, 0, n-slow+1)
	for i := slow - 1; i < n; i++ {
		res.Line[i] = emaFast[i] - emaSlow[i]
		valid = append(valid, res.Line[i])
	}
	sig := EMA(valid, signal)
	for j, v := range sig {
		i := slow - 1 + j
		res.Signal[i] = v
		if Valid(v) {
			res.Histogram[i] = res.Line[i] - v
		}
	}
	return res
}

// CCI computes the commodity channel index over typical prices with the
// conventional 0.015 scaling constant.
func CCI(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}
	sma := SMA(tp, period)
	for i := period - 1; i < n; i++ {
		dev := 0.0
		for j := i - period + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - sma[i])
		}
		dev /= float64(period)
		if dev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - sma[i]) / (0.015 * dev)
	}
	return out
}

// StochasticResult holds the %K and %D series.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes the stochastic oscillator: %K over kPeriod
// high/low extremes and %D as an SMA(dPeriod) of %K.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) StochasticResult {
	n := len(closes)
	res := StochasticResult{K: nanSlice(n), D: nanSlice(n)}
	if kPeriod <= 0 || n < kPeriod {
		return res
	}
	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - kPeriod + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			res.K[i] = 50
			continue
		}
		res.K[i] = (closes[i] - ll) / (hh - ll) * 100
	}
	valid := res.K[kPeriod-1:]
	d := SMA(valid, dPeriod)
	for j, v := range d {
		res.D[kPeriod-1+j] = v
	}
	return res
}
