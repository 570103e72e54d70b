package product

import (
	"fmt"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	saturatedMult = decimal.NewFromInt(10)
)

// CostBreakdown is the result of pricing a bill of materials
type CostBreakdown struct {
	MaterialCost      decimal.Decimal
	LaborCost         decimal.Decimal
	AdditionalCost    decimal.Decimal
	TotalCost         decimal.Decimal
	SalePrice         decimal.Decimal
	ProfitPerUnit     decimal.Decimal
	RealMarginPercent decimal.Decimal
}

// MarginSimulation is one candidate margin priced against a fixed cost
type MarginSimulation struct {
	MarginPercent decimal.Decimal `json:"margin_percent"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Profit        decimal.Decimal `json:"profit"`
}

// SalePriceFor derives a sale price from a total cost and a margin percentage.
// The margin is defined on the price (profit / price), so the price formula is
// cost / (1 - margin/100). A zero cost prices at zero, and margins at or above
// 100% saturate at cost x 10 instead of dividing by a non-positive factor.
func SalePriceFor(totalCost, marginPercent decimal.Decimal) decimal.Decimal {
	if totalCost.IsZero() {
		return decimal.Zero
	}
	if marginPercent.GreaterThanOrEqual(hundred) {
		return totalCost.Mul(saturatedMult).Round(2)
	}
	divisor := decimal.NewFromInt(1).Sub(marginPercent.Div(hundred))
	return totalCost.Div(divisor).Round(2)
}

// RealMarginFor returns profit / price x 100, or zero for a zero price
func RealMarginFor(salePrice, totalCost decimal.Decimal) decimal.Decimal {
	if salePrice.IsZero() {
		return decimal.Zero
	}
	return salePrice.Sub(totalCost).Div(salePrice).Mul(hundred).Round(2)
}

// ComputeCosts aggregates material, labor and flat additional costs into a
// total cost and derives the sale price for the given margin. Material costs
// come from each usage priced by its referenced material; a usage whose
// material is missing from the lookup aborts the computation.
func ComputeCosts(
	usages []MaterialUsage,
	materials map[uuid.UUID]*material.Material,
	laborHours, laborRatePerHour, marginPercent decimal.Decimal,
	additional AdditionalCosts,
) (CostBreakdown, error) {
	materialCost := decimal.Zero
	for _, usage := range usages {
		mat, ok := materials[usage.MaterialID]
		if !ok {
			return CostBreakdown{}, shared.NewDomainError(shared.ErrNotFound.Code,
				fmt.Sprintf("Material %s referenced by the bill of materials was not found", usage.MaterialID))
		}
		cost, err := mat.CostFor(usage.Quantity, usage.Unit)
		if err != nil {
			return CostBreakdown{}, err
		}
		materialCost = materialCost.Add(cost)
	}

	laborCost := laborHours.Mul(laborRatePerHour)
	additionalCost := additional.Total()
	totalCost := materialCost.Add(laborCost).Add(additionalCost).Round(2)

	salePrice := SalePriceFor(totalCost, marginPercent)
	profit := salePrice.Sub(totalCost)

	return CostBreakdown{
		MaterialCost:      materialCost.Round(2),
		LaborCost:         laborCost.Round(2),
		AdditionalCost:    additionalCost.Round(2),
		TotalCost:         totalCost,
		SalePrice:         salePrice,
		ProfitPerUnit:     profit,
		RealMarginPercent: RealMarginFor(salePrice, totalCost),
	}, nil
}

// SimulateMargins prices each candidate margin against a fixed total cost.
// Pure function, shares the price formula with ComputeCosts.
func SimulateMargins(totalCost decimal.Decimal, margins []decimal.Decimal) []MarginSimulation {
	results := make([]MarginSimulation, 0, len(margins))
	for _, margin := range margins {
		price := SalePriceFor(totalCost, margin)
		results = append(results, MarginSimulation{
			MarginPercent: margin,
			SalePrice:     price,
			Profit:        price.Sub(totalCost),
		})
	}
	return results
}
