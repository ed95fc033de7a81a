package core

import (
	"math"

	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places (0.0001 precision)

// BidWithinBudget returns true if the bid amount is at or below the budget.
// Uses decimal arithmetic with monetaryPrecision to avoid floating-point errors.
func BidWithinBudget(amount, budget float64) bool {
	amountDecimal := decimal.NewFromFloat(amount).Round(monetaryPrecision)
	budgetDecimal := decimal.NewFromFloat(budget).Round(monetaryPrecision)

	return amountDecimal.LessThanOrEqual(budgetDecimal)
}

// BidExceedsBest returns true if the bid amount is strictly higher than the current best.
func BidExceedsBest(amount, best float64) bool {
	amountDecimal := decimal.NewFromFloat(amount).Round(monetaryPrecision)
	bestDecimal := decimal.NewFromFloat(best).Round(monetaryPrecision)

	return amountDecimal.GreaterThan(bestDecimal)
}

// AddAmounts returns a+b rounded to monetaryPrecision.
func AddAmounts(a, b float64) float64 {
	sum := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(monetaryPrecision)
	result, _ := sum.Float64()
	return result
}

// ValidAmount reports whether amount is a finite, non-negative number.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}
