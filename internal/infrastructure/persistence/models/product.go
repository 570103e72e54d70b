package models

import (
	"encoding/json"
	"time"

	"github.com/atelier/backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
// The bill of materials and the flat additional costs are JSON text columns:
// both are always loaded and saved with the aggregate, never queried by row.
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Category      string          `gorm:"type:varchar(100);index"`
	LaborHours    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LaborRate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MarginPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Usages        string          `gorm:"type:text;not null;default:'[]'"`
	Additional    string          `gorm:"type:text;not null;default:'{}'"`
	MaterialCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LaborCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostedAt      *time.Time
	Active        bool   `gorm:"not null;default:true;index"`
	ImageRef      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product aggregate
func (m *ProductModel) ToDomain() (*product.Product, error) {
	usages := make([]product.MaterialUsage, 0)
	if m.Usages != "" {
		if err := json.Unmarshal([]byte(m.Usages), &usages); err != nil {
			return nil, err
		}
	}
	var additional product.AdditionalCosts
	if m.Additional != "" {
		if err := json.Unmarshal([]byte(m.Additional), &additional); err != nil {
			return nil, err
		}
	}

	p := &product.Product{
		Name:          m.Name,
		Description:   m.Description,
		Category:      m.Category,
		LaborHours:    m.LaborHours,
		LaborRate:     m.LaborRate,
		MarginPercent: m.MarginPercent,
		Usages:        usages,
		Additional:    additional,
		MaterialCost:  m.MaterialCost,
		LaborCost:     m.LaborCost,
		TotalCost:     m.TotalCost,
		SalePrice:     m.SalePrice,
		CostedAt:      m.CostedAt,
		Active:        m.Active,
		ImageRef:      m.ImageRef,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p, nil
}

// FromDomain populates the persistence model from a domain Product aggregate
func (m *ProductModel) FromDomain(p *product.Product) error {
	usages, err := json.Marshal(p.Usages)
	if err != nil {
		return err
	}
	additional, err := json.Marshal(p.Additional)
	if err != nil {
		return err
	}

	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Category = p.Category
	m.LaborHours = p.LaborHours
	m.LaborRate = p.LaborRate
	m.MarginPercent = p.MarginPercent
	m.Usages = string(usages)
	m.Additional = string(additional)
	m.MaterialCost = p.MaterialCost
	m.LaborCost = p.LaborCost
	m.TotalCost = p.TotalCost
	m.SalePrice = p.SalePrice
	m.CostedAt = p.CostedAt
	m.Active = p.Active
	m.ImageRef = p.ImageRef
	return nil
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *product.Product) (*ProductModel, error) {
	m := &ProductModel{}
	if err := m.FromDomain(p); err != nil {
		return nil, err
	}
	return m, nil
}
