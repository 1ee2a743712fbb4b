package models

// Reason is the code every detector attaches to its result. Callers branch on it
// instead of inferring success from missing fields.
type Reason string

const (
	ReasonOK               Reason = "OK"
	ReasonInsufficientData Reason = "INSUFFICIENT_DATA"

	// sweep primitive
	ReasonSwept       Reason = "SWEPT"
	ReasonNoData      Reason = "NO_DATA"
	ReasonNotYetSwept Reason = "NOT_YET_SWEPT"

	// market structure
	ReasonNoIDM               Reason = "NO_IDM"
	ReasonIDMNotSwept         Reason = "IDM_NOT_SWEPT"
	ReasonSweepWrongDirection Reason = "SWEEP_WRONG_DIRECTION"
	ReasonNoBOSAfterSweep     Reason = "NO_BOS_AFTER_SWEEP"
	ReasonStructureConfirmed  Reason = "STRUCTURE_CONFIRMED"

	// points of interest
	ReasonFVGAssociated       Reason = "FVG_ASSOCIATED"
	ReasonNoFVGAssociation    Reason = "NO_FVG_ASSOCIATION"
	ReasonValidOB             Reason = "VALID_OB_WITH_FVG_AND_BOS"
	ReasonInvalidNoFVG        Reason = "INVALID_NO_FVG"
	ReasonInvalidNoBOSNoSweep Reason = "INVALID_NO_BOS_NO_SWEEP"
	ReasonNotInCorrectArray   Reason = "NOT_IN_CORRECT_ARRAY"
	ReasonOutsideKillZone     Reason = "OUTSIDE_KILL_ZONE"
	ReasonTrapPOI             Reason = "TRAP_POI"
	ReasonBlockedByPermission Reason = "BLOCKED_BY_PERMISSION_GATE"
	ReasonIdeaCoolingDown     Reason = "IDEA_COOLING_DOWN"
	ReasonNarrativeIncomplete Reason = "NARRATIVE_INCOMPLETE"
	ReasonNoMatchingPOI       Reason = "NO_MATCHING_POI"
	ReasonHierarchyBlocked    Reason = "HTF_HIERARCHY_BLOCKED"
)
