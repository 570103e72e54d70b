package product

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxMarginPercent = decimal.NewFromInt(1000)

// MaterialUsage is one line of the bill of materials. Quantity is expressed
// in an arbitrary unit, not necessarily the material's base unit.
type MaterialUsage struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// AdditionalCosts are the flat per-unit costs added on top of materials and
// labor. Absent entries cost zero.
type AdditionalCosts struct {
	Packaging decimal.Decimal `json:"packaging"`
	Tag       decimal.Decimal `json:"tag"`
	Sticker   decimal.Decimal `json:"sticker"`
	Gift      decimal.Decimal `json:"gift"`
	Other     decimal.Decimal `json:"other"`
}

// Total sums all additional cost entries, treating negatives as zero
func (c AdditionalCosts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range []decimal.Decimal{c.Packaging, c.Tag, c.Sticker, c.Gift, c.Other} {
		if v.IsPositive() {
			total = total.Add(v)
		}
	}
	return total
}

// Product is the finished-good aggregate root. The cost fields (MaterialCost,
// LaborCost, TotalCost, SalePrice) are a persisted cache of the last costing
// run, refreshed by an explicit recalculate; they go stale when a referenced
// material's unit cost changes elsewhere.
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Description   string
	Category      string
	LaborHours    decimal.Decimal
	LaborRate     decimal.Decimal
	MarginPercent decimal.Decimal
	Usages        []MaterialUsage
	Additional    AdditionalCosts
	MaterialCost  decimal.Decimal
	LaborCost     decimal.Decimal
	TotalCost     decimal.Decimal
	SalePrice     decimal.Decimal
	CostedAt      *time.Time // when the cached cost fields were last computed
	Active        bool
	ImageRef      string
}

// NewProduct creates a new product with validated pricing parameters
func NewProduct(name string, laborHours, laborRate, marginPercent decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if laborHours.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LABOR_HOURS", "Labor hours cannot be negative")
	}
	if laborRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LABOR_RATE", "Labor rate cannot be negative")
	}
	if marginPercent.IsNegative() || marginPercent.GreaterThan(maxMarginPercent) {
		return nil, shared.NewDomainError("INVALID_MARGIN", "Margin percent must be between 0 and 1000")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		LaborHours:        laborHours,
		LaborRate:         laborRate,
		MarginPercent:     marginPercent,
		Usages:            make([]MaterialUsage, 0),
		Active:            true,
	}, nil
}

// SetUsages replaces the bill of materials
func (p *Product) SetUsages(usages []MaterialUsage) error {
	for _, u := range usages {
		if u.MaterialID == uuid.Nil {
			return shared.NewDomainError("INVALID_USAGE", "Material usage requires a material id")
		}
		if !u.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_USAGE", "Material usage quantity must be positive")
		}
	}
	p.Usages = usages
	p.Touch()
	return nil
}

// UpdatePricing replaces labor and margin parameters
func (p *Product) UpdatePricing(laborHours, laborRate, marginPercent decimal.Decimal) error {
	if laborHours.IsNegative() || laborRate.IsNegative() {
		return shared.NewDomainError("INVALID_LABOR", "Labor parameters cannot be negative")
	}
	if marginPercent.IsNegative() || marginPercent.GreaterThan(maxMarginPercent) {
		return shared.NewDomainError("INVALID_MARGIN", "Margin percent must be between 0 and 1000")
	}
	p.LaborHours = laborHours
	p.LaborRate = laborRate
	p.MarginPercent = marginPercent
	p.Touch()
	return nil
}

// ApplyCosting stores a costing result into the cached derived fields
func (p *Product) ApplyCosting(breakdown CostBreakdown, at time.Time) {
	p.MaterialCost = breakdown.MaterialCost
	p.LaborCost = breakdown.LaborCost
	p.TotalCost = breakdown.TotalCost
	p.SalePrice = breakdown.SalePrice
	p.CostedAt = &at
	p.Touch()
}

// ProfitPerUnit derives the cached per-unit profit
func (p *Product) ProfitPerUnit() decimal.Decimal {
	return p.SalePrice.Sub(p.TotalCost)
}

// RealMarginPercent derives the realized margin from the cached price and cost
func (p *Product) RealMarginPercent() decimal.Decimal {
	return RealMarginFor(p.SalePrice, p.TotalCost)
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}
