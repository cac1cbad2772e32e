package risk

import (
	"fmt"
	"math"

	"QuantPulse/internal/domain/models"
)

// Profile selects the slippage/impact ceilings the feasibility check
// runs against. A profile only tightens or loosens ceilings; the check
// logic itself never changes.
type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileModerate     Profile = "moderate"
	ProfileAggressive   Profile = "aggressive"
)

type ceilings struct {
	slippageBps float64
	impactBps   float64
}

var profileCeilings = map[Profile]ceilings{
	ProfileConservative: {slippageBps: 10, impactBps: 15},
	ProfileModerate:     {slippageBps: 20, impactBps: 25},
	ProfileAggressive:   {slippageBps: 35, impactBps: 40},
}

// Non-blocking warning thresholds.
const (
	wideSpreadBps     = 20
	extremeFundingAbs = 0.005 // 0.5%
	oiWarnPct         = 10
	oiBlockPct        = 20
	liquidityFraction = 0.10
)

// CheckExecution measures spread, slippage-to-mid, and impact for a
// sized signal against the book and returns the feasibility verdict.
// Reasons block (OK=false), warnings never do.
func CheckExecution(sig models.TradableSignal, book models.OrderBookSnapshot, mctx *models.MarketContext, profile Profile) models.ExecutionCheck {
	check := models.ExecutionCheck{OK: true}
	ceil, ok := profileCeilings[profile]
	if !ok {
		ceil = profileCeilings[ProfileModerate]
	}

	if !sig.Sized() || sig.Side == models.SideNone {
		check.OK = false
		check.Reasons = append(check.Reasons, "signal is not sized")
		return check
	}
	if book.BestBid <= 0 || book.BestAsk <= 0 {
		check.OK = false
		check.Reasons = append(check.Reasons, "order book unavailable")
		return check
	}

	mid := book.Mid
	if mid <= 0 {
		mid = (book.BestBid + book.BestAsk) / 2
	}
	price := *sig.Entry

	check.Metrics.SpreadBps = (book.BestAsk - book.BestBid) / mid * 10000
	check.Metrics.SlippageBps = math.Abs(price-mid) / mid * 10000

	touch := book.BestAsk
	if sig.Side == models.SideShort {
		touch = book.BestBid
	}
	check.Metrics.ImpactBps = math.Abs(price-touch) / touch * 10000

	// blocking conditions
	if check.Metrics.SpreadBps > ceil.impactBps {
		check.Reasons = append(check.Reasons, fmt.Sprintf("spread %.1fbps exceeds ceiling %.1fbps", check.Metrics.SpreadBps, ceil.impactBps))
	}
	if check.Metrics.SlippageBps > ceil.slippageBps {
		check.Reasons = append(check.Reasons, fmt.Sprintf("slippage %.1fbps exceeds ceiling %.1fbps", check.Metrics.SlippageBps, ceil.slippageBps))
	}
	if sig.Side == models.SideLong && price < book.BestBid {
		check.Reasons = append(check.Reasons, "long priced below best bid")
	}
	if sig.Side == models.SideShort && price > book.BestAsk {
		check.Reasons = append(check.Reasons, "short priced above best ask")
	}

	if mctx != nil && mctx.OIChangePct != nil {
		oi := math.Abs(*mctx.OIChangePct)
		if oi > oiBlockPct {
			check.Reasons = append(check.Reasons, fmt.Sprintf("open interest moved %.1f%%, market unstable", *mctx.OIChangePct))
		} else if oi > oiWarnPct {
			check.Warnings = append(check.Warnings, fmt.Sprintf("large open interest swing %.1f%%", *mctx.OIChangePct))
		}
	}
	if mctx != nil && mctx.FundingRate != nil && math.Abs(*mctx.FundingRate) > extremeFundingAbs {
		check.Warnings = append(check.Warnings, fmt.Sprintf("extreme funding rate %.4f", *mctx.FundingRate))
	}
	if check.Metrics.SpreadBps > wideSpreadBps {
		check.Warnings = append(check.Warnings, fmt.Sprintf("wide spread %.1fbps", check.Metrics.SpreadBps))
	}

	sameSide := book.AskSize
	if sig.Side == models.SideShort {
		sameSide = book.BidSize
	}
	if sameSide != nil && *sameSide > 0 && sig.Qty != nil && *sig.Qty > *sameSide*liquidityFraction {
		check.Warnings = append(check.Warnings, "order size exceeds 10% of visible liquidity")
	}

	check.OK = len(check.Reasons) == 0
	return check
}
