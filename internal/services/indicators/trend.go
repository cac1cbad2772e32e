package indicators

import "math"

// ADXResult holds the ADX series and its directional components.
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX computes the Wilder average directional index. Directional
// movement and true range are Wilder-smoothed, DI becomes valid at
// index period, and ADX seeds with a simple average of the first period
// DX values, so its first valid value is at index 2*period-1.
func ADX(highs, lows, closes []float64, period int) ADXResult {
	n := len(closes)
	res := ADXResult{ADX: nanSlice(n), PlusDI: nanSlice(n), MinusDI: nanSlice(n)}
	if period <= 0 || n < period+1 {
		return res
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := TrueRange(highs, lows, closes)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Wilder-smoothed running sums, seeded over the first period bars.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}
	p := float64(period)
	dx := nanSlice(n)
	setDI := func(i int) {
		if smTR == 0 {
			res.PlusDI[i], res.MinusDI[i], dx[i] = 0, 0, 0
			return
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		res.PlusDI[i] = pdi
		res.MinusDI[i] = mdi
		if pdi+mdi == 0 {
			dx[i] = 0
			return
		}
		dx[i] = 100 * math.Abs(pdi-mdi) / (pdi + mdi)
	}
	setDI(period)
	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/p + tr[i]
		smPlus = smPlus - smPlus/p + plusDM[i]
		smMinus = smMinus - smMinus/p + minusDM[i]
		setDI(i)
	}

	if n < 2*period {
		return res
	}
	seed := 0.0
	for i := period; i < 2*period; i++ {
		seed += dx[i]
	}
	prev := seed / p
	res.ADX[2*period-1] = prev
	for i := 2 * period; i < n; i++ {
		prev = (prev*(p-1) + dx[i]) / p
		res.ADX[i] = prev
	}
	return res
}
