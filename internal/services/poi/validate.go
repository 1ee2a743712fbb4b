package poi

import (
	"math"
	"sort"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/liquidity"
)

// ValidateBasic requires a linked gap plus either a structure break beyond the block
// or a sweep of its mean threshold in the block's direction. Sweep evidence pointing
// at the block's own bar, an earlier bar, or a bar after lastClosed is dropped.
func ValidateBasic(ob models.OrderBlock, st models.StructureState, series models.Series, sweep liquidity.SweepFunc) models.OrderBlock {
	ob.ValidBasic = false
	ob.ValidPOI = false
	ob.CausedBOS = false
	ob.BOSLevel = nil
	ob.SweepEvidence = nil

	if !ob.HasFVG {
		ob.Reason = models.ReasonInvalidNoFVG
		return ob
	}

	if st.StructureConfirmed && st.BOSLevel != nil {
		lvl := *st.BOSLevel
		if (ob.Polarity == models.PolarityBullish && lvl > ob.Top) ||
			(ob.Polarity == models.PolarityBearish && lvl < ob.Bottom) {
			ob.CausedBOS = true
			ob.BOSLevel = &lvl
			return valid(ob)
		}
	}

	if sweep == nil {
		sweep = liquidity.WickSweep
	}
	res := sweep(series, ob.MeanThreshold, ob.BarIndex)
	lastClosed := series.LastClosed()
	if !res.IsSweep || res.BarIndex <= ob.BarIndex || res.BarIndex > lastClosed {
		ob.Reason = models.ReasonInvalidNoBOSNoSweep
		return ob
	}
	want := models.WickLower
	if ob.Polarity == models.PolarityBearish {
		want = models.WickUpper
	}
	if res.Wick != want {
		ob.Reason = models.ReasonSweepWrongDirection
		return ob
	}
	ob.SweepEvidence = &res
	return valid(ob)
}

func valid(ob models.OrderBlock) models.OrderBlock {
	ob.ValidBasic = true
	ob.ValidPOI = true
	ob.Reason = models.ReasonValidOB
	return ob
}

// RankHierarchy tags valid blocks of each polarity by distance of their mean
// threshold from price: nearest DECISION, furthest EXTREME, anything between TRAP.
func RankHierarchy(obs []models.OrderBlock, price float64) []models.OrderBlock {
	out := make([]models.OrderBlock, len(obs))
	copy(out, obs)

	byPol := map[models.Polarity][]int{}
	for i := range out {
		if !out[i].ValidBasic {
			out[i].Rank = models.RankInvalid
			continue
		}
		byPol[out[i].Polarity] = append(byPol[out[i].Polarity], i)
	}
	for _, idx := range byPol {
		sort.SliceStable(idx, func(a, b int) bool {
			return math.Abs(out[idx[a]].MeanThreshold-price) < math.Abs(out[idx[b]].MeanThreshold-price)
		})
		for k, i := range idx {
			switch {
			case k == 0:
				out[i].Rank = models.RankDecision
			case k == len(idx)-1:
				out[i].Rank = models.RankExtreme
			default:
				out[i].Rank = models.RankTrap
			}
		}
	}
	return out
}

// EvaluatePermission runs the trade gate. A nil classifier blocks; a nil oracle does
// not. Any non-nil oracle, including a typed nil, is asked and its answer is final.
func EvaluatePermission(ob models.OrderBlock, classifier service.ZoneClassifier, oracle service.SessionOracle, requireKillZone bool) (bool, models.Reason, models.OrderBlock) {
	ob.ZoneName = models.ZoneUnknown
	ob.KillZoneChecked = false
	ob.KillZoneResult = false

	if !ob.ValidBasic {
		reason := ob.Reason
		if reason == "" {
			reason = models.ReasonBlockedByPermission
		}
		return false, reason, ob
	}
	if ob.Rank == models.RankTrap {
		return false, models.ReasonTrapPOI, ob
	}
	if classifier == nil {
		return false, models.ReasonNotInCorrectArray, ob
	}
	ob.ZoneName = classifier.Classify(ob.MeanThreshold)
	required := models.ZoneDiscount
	if ob.Polarity == models.PolarityBearish {
		required = models.ZonePremium
	}
	if ob.ZoneName != required {
		return false, models.ReasonNotInCorrectArray, ob
	}
	if requireKillZone && oracle != nil {
		ob.KillZoneChecked = true
		ob.KillZoneResult = oracle.IsInKillZone(ob.Time)
		if !ob.KillZoneResult {
			return false, models.ReasonOutsideKillZone, ob
		}
	}
	return true, models.ReasonOK, ob
}
