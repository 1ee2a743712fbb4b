// Package chart projects an evaluation onto display primitives. Nothing here
// feeds back into the analysis.
package chart

import (
	"fmt"
	"math"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/features"
)

const (
	ColorBullish  = "#26a69a"
	ColorBearish  = "#ef5350"
	ColorNeutral  = "#9e9e9e"
	ColorDecision = "#42a5f5"
	ColorExtreme  = "#ab47bc"
	ColorTrap     = "#ffa726"
	ColorInvalid  = "#616161"
	ColorEntry    = "#66bb6a"
	ColorStop     = "#e53935"
	ColorTarget   = "#43a047"
	ColorRange    = "#78909c"
)

// RewardRatio is the fallback target distance in multiples of risk.
const RewardRatio = 2.0

// Input is everything a single overlay is drawn from.
type Input struct {
	Series    models.Series
	Swings    []models.SwingPoint
	Structure models.StructureState
	POIs      models.POISet
	Zone      *models.Zone
	Levels    []models.LiquidityLevel
	ATRPeriod int
	// RangeFrom is the first bar of the dealing range.
	RangeFrom int
}

// Build draws the overlay. The forming bar is never used as an anchor.
func Build(in Input) models.ChartOverlay {
	out := models.ChartOverlay{
		Lines:   []models.ChartLine{},
		Boxes:   []models.ChartBox{},
		Markers: []models.ChartMarker{},
	}
	lc := in.Series.LastClosed()
	if lc < 0 {
		return out
	}

	out.Lines = append(out.Lines, structureLines(in.Swings)...)
	if l, ok := bosLine(in, lc); ok {
		out.Lines = append(out.Lines, l)
	}
	out.Markers = append(out.Markers, structureMarkers(in.Structure)...)

	for _, g := range in.POIs.FVGs {
		out.Boxes = append(out.Boxes, fvgBox(in.Series, g, lc))
	}
	for _, ob := range in.POIs.OrderBlocks {
		out.Boxes = append(out.Boxes, obBox(in.Series, ob, lc))
	}

	atr := features.ATR(in.Series, in.ATRPeriod)
	for _, ob := range in.POIs.OrderBlocks {
		if !ob.PermissionToTrade {
			continue
		}
		entry := span(in.Series, "entry", ob.Top, ob.Bottom, ob.BarIndex, lc, ColorEntry)
		entry.Label = ob.ID
		out.Boxes = append(out.Boxes, entry)

		levels := Levels(ob, atr, in.Levels)
		out.Boxes = append(out.Boxes,
			span(in.Series, "sl", math.Max(levels.Entry, levels.Stop), math.Min(levels.Entry, levels.Stop), lc, lc, ColorStop),
			span(in.Series, "tp", math.Max(levels.Entry, levels.Target), math.Min(levels.Entry, levels.Target), lc, lc, ColorTarget),
		)
	}

	if in.Zone != nil {
		from := max(0, in.RangeFrom)
		box := span(in.Series, "dealing_range", in.Zone.SwingHigh, in.Zone.SwingLow, from, lc, ColorRange)
		box.Label = fmt.Sprintf("EQ %.5g", in.Zone.Equilibrium)
		out.Boxes = append(out.Boxes, box)
	}
	return out
}

func structureLines(swings []models.SwingPoint) []models.ChartLine {
	var out []models.ChartLine
	for i := 1; i < len(swings); i++ {
		a, b := swings[i-1], swings[i]
		out = append(out, models.ChartLine{
			Kind:  "structure",
			From:  models.ChartPoint{Index: a.Index, Time: a.Time, Price: a.Price},
			To:    models.ChartPoint{Index: b.Index, Time: b.Time, Price: b.Price},
			Color: ColorNeutral,
		})
	}
	return out
}

// bosLine runs from the broken swing to the bar that closed through it.
func bosLine(in Input, lc int) (models.ChartLine, bool) {
	st := in.Structure
	if !st.StructureConfirmed || st.BOSLevel == nil || st.BOSBarIndex > lc {
		return models.ChartLine{}, false
	}
	kind, color := models.SwingHigh, ColorBullish
	if st.Label.Polarity() == models.PolarityBearish {
		kind, color = models.SwingLow, ColorBearish
	}
	from := models.ChartPoint{Price: *st.BOSLevel}
	for i := len(in.Swings) - 1; i >= 0; i-- {
		sp := in.Swings[i]
		if sp.Kind == kind && sp.Price == *st.BOSLevel {
			from.Index, from.Time = sp.Index, sp.Time
			break
		}
	}
	return models.ChartLine{
		Kind:  "bos",
		From:  from,
		To:    models.ChartPoint{Index: st.BOSBarIndex, Time: in.Series[st.BOSBarIndex].Time, Price: *st.BOSLevel},
		Label: string(st.Label),
		Color: color,
		Style: "dashed",
	}, true
}

func structureMarkers(st models.StructureState) []models.ChartMarker {
	var out []models.ChartMarker
	if st.IDM != nil {
		out = append(out, models.ChartMarker{
			Kind:  "idm",
			At:    models.ChartPoint{Index: st.IDM.Index, Time: st.IDM.Time, Price: st.IDM.Price},
			Label: "IDM",
			Color: polarityColor(st.IDM.Polarity),
		})
	}
	if st.Sweep != nil && st.Sweep.IsSweep {
		out = append(out, models.ChartMarker{
			Kind:  "sweep",
			At:    models.ChartPoint{Index: st.Sweep.BarIndex, Time: st.Sweep.Time, Price: st.Sweep.Price},
			Label: string(st.Sweep.Wick),
			Color: ColorNeutral,
		})
	}
	return out
}

func fvgBox(s models.Series, g models.FairValueGap, lc int) models.ChartBox {
	to := lc
	if g.Mitigated {
		to = g.MitigatedAtBar
	}
	b := span(s, "fvg", g.Top, g.Bottom, g.CreatedByBar, to, polarityColor(g.Polarity))
	b.Label = g.ID
	return b
}

func obBox(s models.Series, ob models.OrderBlock, lc int) models.ChartBox {
	b := span(s, "order_block", ob.Top, ob.Bottom, ob.BarIndex, lc, RankColor(ob.Rank))
	b.Label = fmt.Sprintf("%s %s", ob.ID, ob.Rank)
	return b
}

// RankColor maps an order block rank to its display colour.
func RankColor(r models.OBRank) string {
	switch r {
	case models.RankDecision:
		return ColorDecision
	case models.RankExtreme:
		return ColorExtreme
	case models.RankTrap:
		return ColorTrap
	default:
		return ColorInvalid
	}
}

func polarityColor(p models.Polarity) string {
	switch p {
	case models.PolarityBullish:
		return ColorBullish
	case models.PolarityBearish:
		return ColorBearish
	default:
		return ColorNeutral
	}
}

func span(s models.Series, kind string, top, bottom float64, from, to int, color string) models.ChartBox {
	b := models.ChartBox{Kind: kind, Top: top, Bottom: bottom, FromIndex: from, ToIndex: to, Color: color}
	if from >= 0 && from < len(s) {
		b.FromTime = s[from].Time
	}
	if to >= 0 && to < len(s) {
		b.ToTime = s[to].Time
	}
	return b
}
