package chart

import (
	"math"

	"SMCTrader/internal/domain/models"
)

// RiskLevels are display-only entry, stop and target prices for one block.
type RiskLevels struct {
	Entry  float64
	Stop   float64
	Target float64
	// FromLiquidity is set when Target is an opposing liquidity level rather
	// than the reward-ratio fallback.
	FromLiquidity bool
}

// Levels places the entry at the block's mean threshold and the stop one ATR
// beyond the far edge. The target is the nearest liquidity level on the profit
// side, or RewardRatio times the risk when there is none.
func Levels(ob models.OrderBlock, atr float64, levels []models.LiquidityLevel) RiskLevels {
	r := RiskLevels{Entry: ob.MeanThreshold}
	bullish := ob.Polarity == models.PolarityBullish
	if bullish {
		r.Stop = ob.Bottom - atr
	} else {
		r.Stop = ob.Top + atr
	}
	risk := math.Abs(r.Entry - r.Stop)

	best := math.Inf(1)
	for _, lv := range levels {
		d := lv.Price - r.Entry
		if !bullish {
			d = -d
		}
		if d > 0 && d < best {
			best = d
			r.Target = lv.Price
			r.FromLiquidity = true
		}
	}
	if !r.FromLiquidity {
		if bullish {
			r.Target = r.Entry + RewardRatio*risk
		} else {
			r.Target = r.Entry - RewardRatio*risk
		}
	}
	return r
}
