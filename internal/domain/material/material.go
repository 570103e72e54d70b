package material

import (
	"fmt"
	"strings"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default attribute values applied by NewMaterial
const (
	DefaultCategory = "Geral"
	DefaultBaseUnit = "unidade"
	maxNameLength   = 100
	minNameLength   = 2
)

// ConversionTable maps an alternate unit name to its factor F, meaning
// 1 base unit = F alternate units. The cost of one alternate unit is
// therefore unit cost / F.
type ConversionTable map[string]decimal.Decimal

// FactorFor returns the conversion factor for the given unit, if registered
// with a positive value.
func (t ConversionTable) FactorFor(unit string) (decimal.Decimal, bool) {
	factor, ok := t[unit]
	if !ok || !factor.IsPositive() {
		return decimal.Zero, false
	}
	return factor, true
}

// MovementKind identifies the direction of a stock movement
type MovementKind string

const (
	MovementEntry MovementKind = "entry"
	MovementExit  MovementKind = "exit"
)

// IsValid checks if the kind is a known MovementKind
func (k MovementKind) IsValid() bool {
	return k == MovementEntry || k == MovementExit
}

// Material is the raw-material ("insumo") aggregate root. It owns the unit
// conversion table and the stock ledger for one purchasable input.
type Material struct {
	shared.BaseAggregateRoot
	Name         string
	Category     string
	UnitCost     decimal.Decimal
	BaseUnit     string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	Conversions  ConversionTable
	Variation    string // optional single letter A-Z distinguishing color/size variants
	Supplier     string
	Notes        string
	ImageRef     string
	Active       bool
}

// NewMaterial creates a new material with validated required attributes
func NewMaterial(name, category string, unitCost decimal.Decimal, baseUnit string) (*Material, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, shared.NewDomainError("INVALID_NAME",
			fmt.Sprintf("Material name must have between %d and %d characters", minNameLength, maxNameLength))
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	if category == "" {
		category = DefaultCategory
	}
	if baseUnit == "" {
		baseUnit = DefaultBaseUnit
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Category:          category,
		UnitCost:          unitCost,
		BaseUnit:          baseUnit,
		CurrentStock:      decimal.Zero,
		MinimumStock:      decimal.NewFromInt(1),
		Conversions:       ConversionTable{},
		Active:            true,
	}, nil
}

// SetVariation sets the variation tag. An empty string clears it; otherwise
// the tag must be a single uppercase letter A-Z.
func (m *Material) SetVariation(tag string) error {
	if tag == "" {
		m.Variation = ""
		m.Touch()
		return nil
	}
	if len(tag) != 1 || tag[0] < 'A' || tag[0] > 'Z' {
		return shared.NewDomainError("INVALID_VARIATION", "Variation must be a single letter A-Z")
	}
	m.Variation = tag
	m.Touch()
	return nil
}

// SetConversion registers (or replaces) the factor for an alternate unit
func (m *Material) SetConversion(unit string, factor decimal.Decimal) error {
	if unit == "" || unit == m.BaseUnit {
		return shared.NewDomainError("INVALID_UNIT", "Conversion unit must be a non-empty alternate unit")
	}
	if !factor.IsPositive() {
		return shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor must be positive")
	}
	if m.Conversions == nil {
		m.Conversions = ConversionTable{}
	}
	m.Conversions[unit] = factor
	m.Touch()
	return nil
}

// CostFor converts a quantity expressed in an arbitrary unit into cost.
// Quantities in the base unit are priced directly; other units go through the
// conversion table. An unknown or non-positive factor is a hard error rather
// than a silent 1:1 fallback.
func (m *Material) CostFor(quantity decimal.Decimal, unit string) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unit == "" || unit == m.BaseUnit {
		return quantity.Mul(m.UnitCost), nil
	}
	factor, ok := m.Conversions.FactorFor(unit)
	if !ok {
		return decimal.Zero, shared.NewDomainError(shared.ErrUnresolvedUnitConversion.Code,
			fmt.Sprintf("Material %q has no conversion factor for unit %q", m.Name, unit))
	}
	return quantity.Div(factor).Mul(m.UnitCost), nil
}

// BaseQuantityFor converts a quantity in an arbitrary unit to base units,
// with the same hard-error conversion policy as CostFor.
func (m *Material) BaseQuantityFor(quantity decimal.Decimal, unit string) (decimal.Decimal, error) {
	if unit == "" || unit == m.BaseUnit {
		return quantity, nil
	}
	factor, ok := m.Conversions.FactorFor(unit)
	if !ok {
		return decimal.Zero, shared.NewDomainError(shared.ErrUnresolvedUnitConversion.Code,
			fmt.Sprintf("Material %q has no conversion factor for unit %q", m.Name, unit))
	}
	return quantity.Div(factor), nil
}

// RegisterEntry adds quantity to the current stock
func (m *Material) RegisterEntry(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	m.CurrentStock = m.CurrentStock.Add(quantity)
	m.Touch()
	return nil
}

// RegisterExit subtracts quantity from the current stock. The movement is
// rejected and stock left unchanged if it would go negative.
func (m *Material) RegisterExit(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if m.CurrentStock.Sub(quantity).IsNegative() {
		return shared.ErrInsufficientStock
	}
	m.CurrentStock = m.CurrentStock.Sub(quantity)
	m.Touch()
	return nil
}

// ApplyMovement dispatches to RegisterEntry or RegisterExit by kind
func (m *Material) ApplyMovement(kind MovementKind, quantity decimal.Decimal) error {
	switch kind {
	case MovementEntry:
		return m.RegisterEntry(quantity)
	case MovementExit:
		return m.RegisterExit(quantity)
	default:
		return shared.NewDomainError("INVALID_MOVEMENT", "Movement kind must be entry or exit")
	}
}

// IsLowStock reports whether the stock level reached the minimum threshold
func (m *Material) IsLowStock() bool {
	return m.CurrentStock.LessThanOrEqual(m.MinimumStock)
}

// StockValue returns the value of the stock on hand at the base unit cost
func (m *Material) StockValue() decimal.Decimal {
	return m.CurrentStock.Mul(m.UnitCost)
}

// UpdateDetails replaces the editable attributes, keeping stock untouched
func (m *Material) UpdateDetails(name, category string, unitCost decimal.Decimal, baseUnit string, minimumStock decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME",
			fmt.Sprintf("Material name must have between %d and %d characters", minNameLength, maxNameLength))
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}
	if minimumStock.IsNegative() {
		return shared.NewDomainError("INVALID_MINIMUM_STOCK", "Minimum stock cannot be negative")
	}
	m.Name = name
	if category != "" {
		m.Category = category
	}
	if baseUnit != "" {
		m.BaseUnit = baseUnit
	}
	m.UnitCost = unitCost
	m.MinimumStock = minimumStock
	m.Touch()
	return nil
}

// Deactivate marks the material as inactive without deleting history
func (m *Material) Deactivate() {
	m.Active = false
	m.Touch()
}

// Activate marks the material as active again
func (m *Material) Activate() {
	m.Active = true
	m.Touch()
}
