package indicators

import "math"

// sarState is the explicit path-dependent state of the parabolic SAR:
// current trend direction, extreme point, and acceleration factor. It is
// threaded through a fold over the candles in strict chronological
// order; there is no hidden module state.
type sarState struct {
	rising bool
	sar    float64
	ep     float64
	af     float64
}

// ParabolicSAR computes the parabolic stop-and-reverse series with the
// given acceleration step and maximum. The first position is NaN; the
// SAR for an uptrend is clamped below the prior two bars' lows, and for
// a downtrend above the prior two bars' highs.
func ParabolicSAR(highs, lows []float64, step, maxAF float64) []float64 {
	n := len(highs)
	out := nanSlice(n)
	if n < 2 {
		return out
	}

	st := sarState{
		rising: highs[1] >= highs[0],
		af:     step,
	}
	if st.rising {
		st.sar = lows[0]
		st.ep = highs[1]
	} else {
		st.sar = highs[0]
		st.ep = lows[1]
	}
	out[1] = st.sar

	for i := 2; i < n; i++ {
		next := st.sar + st.af*(st.ep-st.sar)
		if st.rising {
			// never place the SAR above the prior two lows
			next = math.Min(next, math.Min(lows[i-1], lows[i-2]))
			if lows[i] <= next {
				// flip to falling: SAR jumps to the extreme point
				st = sarState{rising: false, sar: st.ep, ep: lows[i], af: step}
				out[i] = st.sar
				continue
			}
			if highs[i] > st.ep {
				st.ep = highs[i]
				st.af = math.Min(st.af+step, maxAF)
			}
		} else {
			next = math.Max(next, math.Max(highs[i-1], highs[i-2]))
			if highs[i] >= next {
				st = sarState{rising: true, sar: st.ep, ep: highs[i], af: step}
				out[i] = st.sar
				continue
			}
			if lows[i] < st.ep {
				st.ep = lows[i]
				st.af = math.Min(st.af+step, maxAF)
			}
		}
		st.sar = next
		out[i] = st.sar
	}
	return out
}
