package zones

import "SMCTrader/internal/domain/models"

type Direction string

const (
	Up   Direction = "UP"
	Down Direction = "DOWN"
)

// Target is the next zone level in a direction.
type Target struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"`
}

// NextTarget returns the closest zone level strictly beyond price in dir.
func NextTarget(z models.Zone, price float64, dir Direction) (Target, bool) {
	levels := []Target{
		{Name: "SWING_LOW", Price: z.SwingLow},
		{Name: "FIB_0.382", Price: z.Fib382},
		{Name: "EQUILIBRIUM", Price: z.Fib500},
		{Name: "FIB_0.618", Price: z.Fib618},
		{Name: "FIB_0.786", Price: z.Fib786},
		{Name: "SWING_HIGH", Price: z.SwingHigh},
	}
	var (
		best  Target
		found bool
	)
	for _, l := range levels {
		switch dir {
		case Up:
			if l.Price > price && (!found || l.Price < best.Price) {
				best, found = l, true
			}
		case Down:
			if l.Price < price && (!found || l.Price > best.Price) {
				best, found = l, true
			}
		}
	}
	if !found {
		return Target{}, false
	}
	best.Distance = best.Price - price
	if dir == Down {
		best.Distance = price - best.Price
	}
	return best, true
}

// Classifier adapts a zone to the zone classifier collaborator.
type Classifier struct {
	Zone models.Zone
}

func NewClassifier(z models.Zone) *Classifier {
	return &Classifier{Zone: z}
}

// Classify names the zone of price. A nil classifier knows no zone.
func (c *Classifier) Classify(price float64) models.ZoneName {
	if c == nil {
		return models.ZoneUnknown
	}
	return c.Zone.Classify(price)
}
