package models

import (
	"github.com/shopspring/decimal"
)

// StandardVigPrice is the assumed price when a snapshot carries none.
const StandardVigPrice = -110

var hundred = decimal.NewFromInt(100)

// DecimalOdds converts an American price to European decimal odds.
// Returns zero for a zero price.
func DecimalOdds(american int) decimal.Decimal {
	if american == 0 {
		return decimal.Zero
	}
	price := decimal.NewFromInt(int64(american))
	if american > 0 {
		return price.Div(hundred).Add(decimal.NewFromInt(1))
	}
	return hundred.Div(price.Neg()).Add(decimal.NewFromInt(1))
}

// ImpliedProbability converts an American price to its implied win
// probability, vig included. Returns 0 for a zero price.
func ImpliedProbability(american int) float64 {
	if american == 0 {
		return 0
	}
	price := decimal.NewFromInt(int64(american))
	var p decimal.Decimal
	if american > 0 {
		p = hundred.Div(price.Add(hundred))
	} else {
		abs := price.Neg()
		p = abs.Div(abs.Add(hundred))
	}
	f, _ := p.Float64()
	return f
}

// ProfitPerUnit returns the profit on a winning one-unit stake at the
// given American price.
func ProfitPerUnit(american int) float64 {
	odds := DecimalOdds(american)
	if odds.IsZero() {
		return 0
	}
	f, _ := odds.Sub(decimal.NewFromInt(1)).Float64()
	return f
}
