package models

type ZoneName string

const (
	ZonePremium     ZoneName = "PREMIUM"
	ZoneDiscount    ZoneName = "DISCOUNT"
	ZoneEquilibrium ZoneName = "EQUILIBRIUM"
	ZoneUnknown     ZoneName = ""
)

// Zone is the premium/discount split of a dealing range.
type Zone struct {
	SwingHigh     float64 `json:"swing_high"`
	SwingLow      float64 `json:"swing_low"`
	Range         float64 `json:"range"`
	Equilibrium   float64 `json:"equilibrium"`
	Buffer        float64 `json:"buffer"`
	EqUpper       float64 `json:"eq_upper"`
	EqLower       float64 `json:"eq_lower"`
	PremiumStart  float64 `json:"premium_start"`
	PremiumEnd    float64 `json:"premium_end"`
	DiscountStart float64 `json:"discount_start"`
	DiscountEnd   float64 `json:"discount_end"`
	PremiumMid    float64 `json:"premium_mid"`
	DiscountMid   float64 `json:"discount_mid"`
	Fib382        float64 `json:"fib_382"`
	Fib500        float64 `json:"fib_500"`
	Fib618        float64 `json:"fib_618"`
	Fib786        float64 `json:"fib_786"`
}

// Classify places price in the zone. The equilibrium band is inclusive.
func (z Zone) Classify(price float64) ZoneName {
	switch {
	case price > z.EqUpper:
		return ZonePremium
	case price < z.EqLower:
		return ZoneDiscount
	default:
		return ZoneEquilibrium
	}
}
