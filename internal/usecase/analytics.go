package usecase

import "math"

// Performance is the aggregate statistics of one backtest run.
type Performance struct {
	TotalTrades int
	Wins        int
	Losses      int
	HitRate     float64
	AvgWin      float64
	AvgLoss     float64
	Expectancy  float64
	Sharpe      float64
	MaxDrawdown float64
	StartEquity float64
	FinalEquity float64
	TotalPnL    float64
}

// ComputePerformance rolls realized trade PnLs into an equity curve and
// derives hit-rate, expectancy, the trade-period Sharpe-like ratio and
// max drawdown. The Sharpe-like ratio deliberately treats one trade as
// one period with no calendar aggregation; it is a documented
// approximation, not a daily Sharpe.
func ComputePerformance(startEquity float64, pnls []float64) (Performance, []float64) {
	perf := Performance{StartEquity: startEquity, FinalEquity: startEquity}
	curve := make([]float64, 0, len(pnls)+1)
	curve = append(curve, startEquity)

	var winSum, lossSum float64
	equity := startEquity
	for _, pnl := range pnls {
		equity += pnl
		curve = append(curve, equity)
		perf.TotalPnL += pnl
		if pnl > 0 {
			perf.Wins++
			winSum += pnl
		} else {
			perf.Losses++
			lossSum += pnl
		}
	}
	perf.TotalTrades = len(pnls)
	perf.FinalEquity = equity
	perf.MaxDrawdown = MaxDrawdown(curve)

	if perf.TotalTrades == 0 {
		return perf, curve
	}

	perf.HitRate = float64(perf.Wins) / float64(perf.TotalTrades)
	if perf.Wins > 0 {
		perf.AvgWin = winSum / float64(perf.Wins)
	}
	if perf.Losses > 0 {
		perf.AvgLoss = lossSum / float64(perf.Losses)
	}
	pWin := perf.HitRate
	perf.Expectancy = pWin*perf.AvgWin + (1-pWin)*perf.AvgLoss
	perf.Sharpe = sharpeRatio(pnls)
	return perf, curve
}

// MaxDrawdown scans the equity curve left to right and returns the
// largest peak-to-current drop.
func MaxDrawdown(curve []float64) float64 {
	var peak, maxDD float64
	for i, v := range curve {
		if i == 0 || v > peak {
			peak = v
		}
		if dd := peak - v; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// sharpeRatio is mean(pnl)/stddev(pnl) over trades. Zero when fewer
// than two trades or when the PnLs do not vary.
func sharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}
	mean := 0.0
	for _, p := range pnls {
		mean += p
	}
	mean /= float64(len(pnls))
	variance := 0.0
	for _, p := range pnls {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(pnls) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}
