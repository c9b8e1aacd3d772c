package service

import (
	"betbot/models"
)

// AmericanToDecimal converts American odds to a decimal multiplier.
// +150 -> 2.5, -200 -> 1.5. Zero odds have no sensible multiplier and
// return 1.0 so degenerate legs drop out of parlay products.
func AmericanToDecimal(odds float64) float64 {
	switch {
	case odds > 0:
		return odds/100 + 1
	case odds < 0:
		return 100/-odds + 1
	default:
		return 1.0
	}
}

// DecimalToAmerican converts a decimal multiplier back to American odds.
// Multipliers at or below 1.0 are degenerate and map to 0, with one
// long-standing exception: exactly 1.0 maps to +100. That boundary is
// inherited behavior, pinned by tests; do not generalize it.
func DecimalToAmerican(decimal float64) float64 {
	switch {
	case decimal >= 2.0:
		return (decimal - 1) * 100
	case decimal > 1.0:
		return -100 / (decimal - 1)
	case decimal == 1.0:
		return 100
	default:
		return 0
	}
}

// CombineParlayOdds multiplies each leg's decimal multiplier together and
// converts the product back to American odds. Legs with odds of exactly 0
// are skipped rather than rejected. A combined American value of 0 signals
// a degenerate combination; callers surface it as a warning, not an error.
func CombineParlayOdds(legOdds []float64) float64 {
	decimal := 1.0
	for _, odds := range legOdds {
		if odds == 0 {
			continue
		}
		decimal *= AmericanToDecimal(odds)
	}
	return DecimalToAmerican(decimal)
}

// ResultValue computes the signed net-units outcome of a settled bet:
// winnings at the bet's odds for a win, the full stake lost for a loss,
// zero for a push.
func ResultValue(status models.BetStatus, units, odds float64) float64 {
	switch status {
	case models.BetStatusWon:
		if odds > 0 {
			return units * (odds / 100)
		}
		if odds < 0 {
			return units * (100 / -odds)
		}
		return 0
	case models.BetStatusLost:
		return -units
	default: // push
		return 0
	}
}
