package utils

import (
	"math"

	"github.com/quantfolio/stockdash-engine/internal/backtest/engine/engine_v1/costmodel"
)

// CalculateMaxQuantity calculates the maximum quantity that can be bought with
// the given cash at the given price once transaction costs are accounted for.
func CalculateMaxQuantity(cash float64, price float64, cost costmodel.CostModel) float64 {
	// Handle edge cases
	if price <= 0 || cash <= 0 {
		return 0
	}

	// Initial rough estimate (ignoring fees)
	maxQty := cash / price

	// Iteratively refine by accounting for fees
	for i := 0; i < 10; i++ { // Usually converges quickly, limit iterations
		totalCost := maxQty*price + cost.Calculate(maxQty, price)
		if totalCost <= cash {
			break
		}
		// Adjust quantity down proportionally
		adjustment := cash / totalCost
		maxQty = maxQty * adjustment
	}

	return maxQty
}

// CalculateQuantityForBudget calculates the purchasable quantity when spending
// the given fraction of cash.
func CalculateQuantityForBudget(cash float64, price float64, cost costmodel.CostModel, fraction float64) float64 {
	if fraction <= 0 {
		return 0
	}

	if fraction > 1 {
		fraction = 1
	}

	return CalculateMaxQuantity(cash*fraction, price, cost)
}

// RoundToDecimalPrecision floors the quantity to the specified decimal
// precision. Precision 0 yields whole shares.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier) / multiplier
}
