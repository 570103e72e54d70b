package persistence

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/report"
	"github.com/atelier/backend/internal/domain/sale"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalesReportRepository implements report.SalesRepository with SQL rollups
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// monthlyRow is the scan target for the monthly evolution rollup
type monthlyRow struct {
	Month     string
	SaleCount int64
	Units     int64
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
}

// MonthlyEvolution groups finalized sales by calendar month, oldest first.
// Months without sales are absent from the result.
func (r *GormSalesReportRepository) MonthlyEvolution(ctx context.Context, start, end time.Time) ([]report.MonthlySales, error) {
	var rows []monthlyRow
	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("strftime('%Y-%m', date) AS month, COUNT(*) AS sale_count, "+
			"COALESCE(SUM(total_units), 0) AS units, "+
			"COALESCE(SUM(total), 0) AS revenue, "+
			"COALESCE(SUM(total_profit), 0) AS profit").
		Where("status = ? AND date >= ? AND date <= ?", sale.StatusFinalized.String(), start, end).
		Group("strftime('%Y-%m', date)").
		Order("month asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]report.MonthlySales, 0, len(rows))
	for _, row := range rows {
		avg := decimal.Zero
		if row.SaleCount > 0 {
			avg = row.Revenue.Div(decimal.NewFromInt(row.SaleCount)).Round(2)
		}
		result = append(result, report.MonthlySales{
			Month:         row.Month,
			SaleCount:     row.SaleCount,
			Units:         row.Units,
			Revenue:       row.Revenue,
			Profit:        row.Profit,
			AverageTicket: avg,
		})
	}
	return result, nil
}

// GormInventoryReportRepository implements report.InventoryRepository
type GormInventoryReportRepository struct {
	db *gorm.DB
}

// NewGormInventoryReportRepository creates a new GormInventoryReportRepository
func NewGormInventoryReportRepository(db *gorm.DB) *GormInventoryReportRepository {
	return &GormInventoryReportRepository{db: db}
}

// TotalStockValue sums current stock times unit cost over active materials
func (r *GormInventoryReportRepository) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Value decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Select("COALESCE(SUM(current_stock * unit_cost), 0) AS value").
		Where("active = ?", true).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Value, nil
}

// MaterialCount counts active materials
func (r *GormInventoryReportRepository) MaterialCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
