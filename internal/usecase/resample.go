package usecase

import (
	"time"

	"QuantPulse/internal/domain/models"
)

// Resample folds a candle sequence into coarser buckets of duration d.
// Bucket boundaries truncate on d; the last, possibly partial, bucket is
// included so the higher-timeframe view always reflects the latest bar.
func Resample(candles []models.Candle, d time.Duration) []models.Candle {
	if d <= 0 || len(candles) == 0 {
		return candles
	}
	out := make([]models.Candle, 0, len(candles)/4+1)
	var cur models.Candle
	var curBucket time.Time
	open := false
	for _, c := range candles {
		bucket := c.OpenTime.Truncate(d)
		if !open || !bucket.Equal(curBucket) {
			if open {
				out = append(out, cur)
			}
			cur = c
			cur.OpenTime = bucket
			curBucket = bucket
			open = true
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	if open {
		out = append(out, cur)
	}
	return out
}
