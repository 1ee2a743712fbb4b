// Package ideas names trade ideas and keeps an in-process memory of them.
package ideas

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"SMCTrader/internal/domain/models"
)

// DefaultExpiry is how long a remembered idea blocks or stays active.
const DefaultExpiry = 30 * time.Minute

// Bucket floors price to a multiple of step so nearby entries share one idea.
// A non-positive step leaves the price as is.
func Bucket(price, step float64) string {
	p := decimal.NewFromFloat(price)
	if step <= 0 {
		return p.String()
	}
	s := decimal.NewFromFloat(step)
	return p.Div(s).Floor().Mul(s).String()
}

// Key renders an idea as direction|zone|bucket|session.
func Key(k models.IdeaKey, step float64) string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Direction, k.Zone, Bucket(k.Price, step), k.Session)
}

// Allowed applies the memory rule to a remembered idea at now.
func Allowed(idea models.Idea, now time.Time) bool {
	if !now.Before(idea.ExpiresAt) {
		return true
	}
	return idea.Status != models.IdeaFailed
}
