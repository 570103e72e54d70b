package sale

import (
	"fmt"

	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quantity-tiered discount: 3 or more units earn 10%, exactly 2 earn 5%,
// a single unit earns nothing. The tier is flat and does not scale beyond 3.
var (
	discountTierThree = decimal.NewFromInt(10)
	discountTierTwo   = decimal.NewFromInt(5)
)

// LineInput is one requested sale line before settlement
type LineInput struct {
	ProductID       uuid.UUID
	Quantity        int64
	SimulatedMargin *decimal.Decimal
	IsGift          bool
	Notes           string
}

// ProductSnapshot carries the product data settlement needs, captured at the
// instant of the operation.
type ProductSnapshot struct {
	ID            uuid.UUID
	Name          string
	TotalCost     decimal.Decimal
	SalePrice     decimal.Decimal
	UsageSnapshot string // JSON blob of material usages, kept for audit
}

// SettledLine is a fully priced sale line
type SettledLine struct {
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int64
	OriginalUnitPrice decimal.Decimal
	SimulatedMargin   *decimal.Decimal
	FinalUnitPrice    decimal.Decimal
	LineValue         decimal.Decimal
	LineCost          decimal.Decimal
	LineProfit        decimal.Decimal
	IsGift            bool
	Notes             string
	MaterialSnapshot  string
}

// Settlement aggregates the priced lines with the tier discount applied
type Settlement struct {
	Lines             []SettledLine
	Subtotal          decimal.Decimal
	TotalCost         decimal.Decimal
	TotalUnits        int64
	DiscountPercent   decimal.Decimal
	DiscountAmount    decimal.Decimal
	Total             decimal.Decimal
	TotalProfit       decimal.Decimal
	RealMarginPercent decimal.Decimal
}

// DiscountPercentFor returns the tier discount for the summed unit count
func DiscountPercentFor(totalUnits int64) decimal.Decimal {
	switch {
	case totalUnits >= 3:
		return discountTierThree
	case totalUnits == 2:
		return discountTierTwo
	default:
		return decimal.Zero
	}
}

// Settle prices each line against its product snapshot and aggregates the
// totals. A line carrying a simulated margin is repriced from the product's
// total cost with the shared price formula; otherwise the stored sale price
// applies. Gift lines contribute their raw quantity to the discount tier, the
// same as any other line.
func Settle(lines []LineInput, products map[uuid.UUID]ProductSnapshot) (*Settlement, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "A sale requires at least one item")
	}

	settled := make([]SettledLine, 0, len(lines))
	subtotal := decimal.Zero
	totalCost := decimal.Zero
	var totalUnits int64

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be at least 1")
		}
		snapshot, ok := products[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code,
				fmt.Sprintf("Product %s referenced by a sale line was not found", line.ProductID))
		}

		finalUnitPrice := snapshot.SalePrice
		if line.SimulatedMargin != nil {
			finalUnitPrice = product.SalePriceFor(snapshot.TotalCost, *line.SimulatedMargin)
		}

		quantity := decimal.NewFromInt(line.Quantity)
		lineValue := finalUnitPrice.Mul(quantity).Round(2)
		lineCost := snapshot.TotalCost.Mul(quantity).Round(2)

		settled = append(settled, SettledLine{
			ProductID:         snapshot.ID,
			ProductName:       snapshot.Name,
			Quantity:          line.Quantity,
			OriginalUnitPrice: snapshot.SalePrice,
			SimulatedMargin:   line.SimulatedMargin,
			FinalUnitPrice:    finalUnitPrice,
			LineValue:         lineValue,
			LineCost:          lineCost,
			LineProfit:        lineValue.Sub(lineCost),
			IsGift:            line.IsGift,
			Notes:             line.Notes,
			MaterialSnapshot:  snapshot.UsageSnapshot,
		})

		subtotal = subtotal.Add(lineValue)
		totalCost = totalCost.Add(lineCost)
		totalUnits += line.Quantity
	}

	discountPercent := DiscountPercentFor(totalUnits)
	discountAmount := subtotal.Mul(discountPercent).Div(hundred).Round(2)
	total := subtotal.Sub(discountAmount)
	totalProfit := total.Sub(totalCost)

	realMargin := decimal.Zero
	if !total.IsZero() {
		realMargin = totalProfit.Div(total).Mul(hundred).Round(2)
	}

	return &Settlement{
		Lines:             settled,
		Subtotal:          subtotal,
		TotalCost:         totalCost,
		TotalUnits:        totalUnits,
		DiscountPercent:   discountPercent,
		DiscountAmount:    discountAmount,
		Total:             total,
		TotalProfit:       totalProfit,
		RealMarginPercent: realMargin,
	}, nil
}
