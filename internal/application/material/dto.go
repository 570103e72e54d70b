package material

import (
	"time"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest is the payload for creating a material
type CreateMaterialRequest struct {
	Name         string                     `json:"name" binding:"required,min=2,max=100"`
	Category     string                     `json:"category"`
	UnitCost     decimal.Decimal            `json:"unit_cost" binding:"required"`
	BaseUnit     string                     `json:"base_unit"`
	MinimumStock *decimal.Decimal           `json:"minimum_stock"`
	Variation    string                     `json:"variation" binding:"omitempty,variation"`
	Conversions  map[string]decimal.Decimal `json:"conversions"`
	Supplier     string                     `json:"supplier"`
	Notes        string                     `json:"notes"`
	ImageRef     string                     `json:"image_ref"`
}

// UpdateMaterialRequest is the payload for editing a material
type UpdateMaterialRequest struct {
	Name         string                     `json:"name" binding:"required,min=2,max=100"`
	Category     string                     `json:"category"`
	UnitCost     decimal.Decimal            `json:"unit_cost"`
	BaseUnit     string                     `json:"base_unit"`
	MinimumStock decimal.Decimal            `json:"minimum_stock"`
	Variation    string                     `json:"variation" binding:"omitempty,variation"`
	Conversions  map[string]decimal.Decimal `json:"conversions"`
	Supplier     string                     `json:"supplier"`
	Notes        string                     `json:"notes"`
	ImageRef     string                     `json:"image_ref"`
	Active       *bool                      `json:"active"`
}

// StockMovementRequest is the payload for a stock entry or exit
type StockMovementRequest struct {
	Kind     string          `json:"kind" binding:"required,oneof=entry exit"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ListFilter constrains the material listing
type ListFilter struct {
	Search   string
	Category string
	LowStock bool
	Page     int
	PageSize int
}

// MaterialResponse is the API representation of a material
type MaterialResponse struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Category     string                     `json:"category"`
	UnitCost     decimal.Decimal            `json:"unit_cost"`
	BaseUnit     string                     `json:"base_unit"`
	CurrentStock decimal.Decimal            `json:"current_stock"`
	MinimumStock decimal.Decimal            `json:"minimum_stock"`
	StockValue   decimal.Decimal            `json:"stock_value"`
	LowStock     bool                       `json:"low_stock"`
	Conversions  map[string]decimal.Decimal `json:"conversions"`
	Variation    string                     `json:"variation,omitempty"`
	Supplier     string                     `json:"supplier,omitempty"`
	Notes        string                     `json:"notes,omitempty"`
	ImageRef     string                     `json:"image_ref,omitempty"`
	Active       bool                       `json:"active"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// ToMaterialResponse maps a domain material to its API representation
func ToMaterialResponse(m *material.Material) *MaterialResponse {
	return &MaterialResponse{
		ID:           m.ID.String(),
		Name:         m.Name,
		Category:     m.Category,
		UnitCost:     m.UnitCost,
		BaseUnit:     m.BaseUnit,
		CurrentStock: m.CurrentStock,
		MinimumStock: m.MinimumStock,
		StockValue:   m.StockValue().Round(2),
		LowStock:     m.IsLowStock(),
		Conversions:  m.Conversions,
		Variation:    m.Variation,
		Supplier:     m.Supplier,
		Notes:        m.Notes,
		ImageRef:     m.ImageRef,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
