package models

import (
	"encoding/json"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for the Material aggregate root.
// The conversion table is stored as a JSON text column; SQLite has no native
// map type and the table is always read as a whole.
type MaterialModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_materials_name_variation,priority:1"`
	Variation    string          `gorm:"type:varchar(1);not null;default:'';uniqueIndex:idx_materials_name_variation,priority:2"`
	Category     string          `gorm:"type:varchar(100);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BaseUnit     string          `gorm:"type:varchar(50);not null"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	Conversions  string          `gorm:"type:text;not null;default:'{}'"`
	Supplier     string          `gorm:"type:varchar(200)"`
	Notes        string          `gorm:"type:text"`
	ImageRef     string          `gorm:"type:varchar(500)"`
	Active       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material aggregate
func (m *MaterialModel) ToDomain() (*material.Material, error) {
	conversions := make(material.ConversionTable)
	if m.Conversions != "" {
		if err := json.Unmarshal([]byte(m.Conversions), &conversions); err != nil {
			return nil, err
		}
	}

	mat := &material.Material{
		Name:         m.Name,
		Category:     m.Category,
		UnitCost:     m.UnitCost,
		BaseUnit:     m.BaseUnit,
		CurrentStock: m.CurrentStock,
		MinimumStock: m.MinimumStock,
		Conversions:  conversions,
		Variation:    m.Variation,
		Supplier:     m.Supplier,
		Notes:        m.Notes,
		ImageRef:     m.ImageRef,
		Active:       m.Active,
	}
	m.PopulateAggregateRoot(&mat.BaseAggregateRoot)
	return mat, nil
}

// FromDomain populates the persistence model from a domain Material aggregate
func (m *MaterialModel) FromDomain(mat *material.Material) error {
	conversions, err := json.Marshal(mat.Conversions)
	if err != nil {
		return err
	}

	m.FromDomainAggregateRoot(mat.BaseAggregateRoot)
	m.Name = mat.Name
	m.Variation = mat.Variation
	m.Category = mat.Category
	m.UnitCost = mat.UnitCost
	m.BaseUnit = mat.BaseUnit
	m.CurrentStock = mat.CurrentStock
	m.MinimumStock = mat.MinimumStock
	m.Conversions = string(conversions)
	m.Supplier = mat.Supplier
	m.Notes = mat.Notes
	m.ImageRef = mat.ImageRef
	m.Active = mat.Active
	return nil
}

// MaterialModelFromDomain creates a new persistence model from a domain Material
func MaterialModelFromDomain(mat *material.Material) (*MaterialModel, error) {
	m := &MaterialModel{}
	if err := m.FromDomain(mat); err != nil {
		return nil, err
	}
	return m, nil
}
