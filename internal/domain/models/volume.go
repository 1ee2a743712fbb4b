package models

// VolumeStrength grades a volume spike by its ratio to the recent average.
type VolumeStrength string

const (
	VolumeNormal VolumeStrength = "NORMAL"
	VolumeWeak   VolumeStrength = "WEAK"
	VolumeMedium VolumeStrength = "MEDIUM"
	VolumeStrong VolumeStrength = "STRONG"
)

// VolumeFlow reads who controlled the last closed bar.
type VolumeFlow string

const (
	FlowBuying  VolumeFlow = "BUYING"
	FlowSelling VolumeFlow = "SELLING"
	FlowNeutral VolumeFlow = "NEUTRAL"
)

// VolumeReport is the volume read of the last closed bar. Divergence is
// PolarityBullish when price fell on rising volume and PolarityBearish when price
// rose on falling volume.
type VolumeReport struct {
	Current    float64        `json:"current"`
	Average    float64        `json:"average"`
	Ratio      float64        `json:"ratio"`
	Spike      bool           `json:"spike"`
	Strength   VolumeStrength `json:"strength"`
	Divergence Polarity       `json:"divergence,omitempty"`
	Flow       VolumeFlow     `json:"flow"`
	OBV        float64        `json:"obv"`

	Confirmed bool     `json:"confirmed"`
	Boost     int      `json:"confidence_boost"`
	Reasons   []string `json:"reasons,omitempty"`
}
