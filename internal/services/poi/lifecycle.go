package poi

import "SMCTrader/internal/domain/models"

// DefaultLifecycleWindow bounds how far past a block its retests are counted.
const DefaultLifecycleWindow = 50

// Classify counts retests of the block over closed bars ob+2 .. min(ob+window,
// LastClosed). A touch holds when price stays on the block's side of its far edge.
func Classify(ob models.OrderBlock, series models.Series, window int) models.OrderBlock {
	if window <= 0 {
		window = DefaultLifecycleWindow
	}
	lc := series.LastClosed()
	start := ob.BarIndex + 2
	ob.TimesTested = 0
	ob.TestedAndHeld = false
	if start > lc {
		ob.Class = models.ClassPotential
		return ob
	}
	end := ob.BarIndex + window
	if end > lc {
		end = lc
	}

	touches, holds, breaks := 0, 0, 0
	for i := start; i <= end; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i]
		if !(c.Low <= ob.Top && c.High >= ob.Bottom) {
			continue
		}
		touches++
		held := c.Low >= ob.Bottom
		if ob.Polarity == models.PolarityBearish {
			held = c.High <= ob.Top
		}
		if held {
			holds++
		} else {
			breaks++
		}
	}

	ob.TimesTested = touches
	ob.TestedAndHeld = holds > 0
	switch {
	case touches >= 2 && holds >= 1 && breaks == 0:
		ob.Class = models.ClassBreaker
	case breaks >= 1 && holds >= 1:
		ob.Class = models.ClassReclaimed
	case touches >= 1 && breaks == 0:
		ob.Class = models.ClassMitigation
	default:
		ob.Class = models.ClassWeak
	}
	return ob
}

// Broken reports whether any closed bar after the block closed through its far edge.
func Broken(ob models.OrderBlock, series models.Series) bool {
	return BrokenAt(ob, series) >= 0
}

// BrokenAt returns the first closed bar after the block that closed through its
// far edge, or -1.
func BrokenAt(ob models.OrderBlock, series models.Series) int {
	lc := series.LastClosed()
	for i := ob.BarIndex + 2; i <= lc; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i].Close
		if ob.Polarity == models.PolarityBullish && c < ob.Bottom {
			return i
		}
		if ob.Polarity == models.PolarityBearish && c > ob.Top {
			return i
		}
	}
	return -1
}
