package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the headline rollup shown on the landing dashboard
type DashboardSummary struct {
	TotalStockValue    decimal.Decimal    `json:"total_stock_value"`
	MaterialCount      int64              `json:"material_count"`
	ActiveProductCount int64              `json:"active_product_count"`
	LowStockCount      int64              `json:"low_stock_count"`
	LowStock           []LowStockMaterial `json:"low_stock"`
}

// LowStockMaterial is one material at or below its minimum threshold
type LowStockMaterial struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	Name         string          `json:"name"`
	Variation    string          `json:"variation,omitempty"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	BaseUnit     string          `json:"base_unit"`
}

// MonthlySales is one calendar month of finalized sales
type MonthlySales struct {
	Month         string          `json:"month"` // YYYY-MM
	SaleCount     int64           `json:"sale_count"`
	Units         int64           `json:"units"`
	Revenue       decimal.Decimal `json:"revenue"`
	Profit        decimal.Decimal `json:"profit"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// MaterialUsageRank is one material ranked by consumption across all active
// products' bills of materials, weighted by unit conversion.
type MaterialUsageRank struct {
	MaterialID    uuid.UUID       `json:"material_id"`
	Name          string          `json:"name"`
	BaseUnit      string          `json:"base_unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"` // in base units
	ProductCount  int64           `json:"product_count"`
}

// ProductProfitability is one product ranked by realized margin
type ProductProfitability struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	ProfitPerUnit decimal.Decimal `json:"profit_per_unit"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// SalesRepository exposes the SQL-side rollups over finalized sales
type SalesRepository interface {
	MonthlyEvolution(ctx context.Context, start, end time.Time) ([]MonthlySales, error)
}

// InventoryRepository exposes the SQL-side rollups over materials
type InventoryRepository interface {
	TotalStockValue(ctx context.Context) (decimal.Decimal, error)
	MaterialCount(ctx context.Context) (int64, error)
}
