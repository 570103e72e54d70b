package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/sale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root
type SaleModel struct {
	AggregateModel
	Code            string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Date            time.Time       `gorm:"type:date;not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalProfit     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalUnits      int64           `gorm:"not null;default:0"`
	ClientName      string          `gorm:"type:varchar(200);index"`
	Notes           string          `gorm:"type:text"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	FinalizedAt     *time.Time
	CancelledAt     *time.Time
	// Associations
	Items []SaleItemModel `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is the persistence model for one sale line. Product fields
// are denormalized so history survives product edits and deletions.
type SaleItemModel struct {
	BaseModel
	SaleID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductName       string           `gorm:"type:varchar(200);not null"`
	Quantity          int64            `gorm:"not null"`
	OriginalUnitPrice decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	SimulatedMargin   *decimal.Decimal `gorm:"type:decimal(18,2)"`
	FinalUnitPrice    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	LineValue         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	LineCost          decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	LineProfit        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	IsGift            bool             `gorm:"not null;default:false"`
	Notes             string           `gorm:"type:text"`
	MaterialSnapshot  string           `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale aggregate
func (m *SaleModel) ToDomain() *sale.Sale {
	s := &sale.Sale{
		Code:            m.Code,
		Date:            m.Date,
		Subtotal:        m.Subtotal,
		DiscountPercent: m.DiscountPercent,
		DiscountAmount:  m.DiscountAmount,
		TotalCost:       m.TotalCost,
		Total:           m.Total,
		TotalProfit:     m.TotalProfit,
		TotalUnits:      m.TotalUnits,
		ClientName:      m.ClientName,
		Notes:           m.Notes,
		Status:          sale.Status(m.Status),
		FinalizedAt:     m.FinalizedAt,
		CancelledAt:     m.CancelledAt,
		Items:           make([]sale.Item, len(m.Items)),
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	for i := range m.Items {
		s.Items[i] = m.Items[i].ToDomain()
	}
	return s
}

// ToDomain converts the item model to a domain sale Item
func (m *SaleItemModel) ToDomain() sale.Item {
	return sale.Item{
		ID:                m.ID,
		SaleID:            m.SaleID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		Quantity:          m.Quantity,
		OriginalUnitPrice: m.OriginalUnitPrice,
		SimulatedMargin:   m.SimulatedMargin,
		FinalUnitPrice:    m.FinalUnitPrice,
		LineValue:         m.LineValue,
		LineCost:          m.LineCost,
		LineProfit:        m.LineProfit,
		IsGift:            m.IsGift,
		Notes:             m.Notes,
		MaterialSnapshot:  m.MaterialSnapshot,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Sale aggregate
func (m *SaleModel) FromDomain(s *sale.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Date = s.Date
	m.Subtotal = s.Subtotal
	m.DiscountPercent = s.DiscountPercent
	m.DiscountAmount = s.DiscountAmount
	m.TotalCost = s.TotalCost
	m.Total = s.Total
	m.TotalProfit = s.TotalProfit
	m.TotalUnits = s.TotalUnits
	m.ClientName = s.ClientName
	m.Notes = s.Notes
	m.Status = s.Status.String()
	m.FinalizedAt = s.FinalizedAt
	m.CancelledAt = s.CancelledAt
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i] = SaleItemModelFromDomain(&s.Items[i], s.ID)
	}
}

// SaleItemModelFromDomain creates an item model from a domain sale Item
func SaleItemModelFromDomain(it *sale.Item, saleID uuid.UUID) SaleItemModel {
	return SaleItemModel{
		BaseModel: BaseModel{
			ID:        it.ID,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		},
		SaleID:            saleID,
		ProductID:         it.ProductID,
		ProductName:       it.ProductName,
		Quantity:          it.Quantity,
		OriginalUnitPrice: it.OriginalUnitPrice,
		SimulatedMargin:   it.SimulatedMargin,
		FinalUnitPrice:    it.FinalUnitPrice,
		LineValue:         it.LineValue,
		LineCost:          it.LineCost,
		LineProfit:        it.LineProfit,
		IsGift:            it.IsGift,
		Notes:             it.Notes,
		MaterialSnapshot:  it.MaterialSnapshot,
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale
func SaleModelFromDomain(s *sale.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
