package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/sale"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saleSortColumns is the allowlist for order-by clauses
var saleSortColumns = map[string]bool{
	"date":       true,
	"code":       true,
	"total":      true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

// GormSaleRepository implements sale.Repository using GORM. Header plus item
// mutations run inside one transaction so a sale never commits half-written.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sales matching the filter with a total count
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(client_name) LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if from, ok := filter.Filters["date_from"]; ok {
		query = query.Where("date >= ?", from)
	}
	if to, ok := filter.Filters["date_to"]; ok {
		query = query.Where("date <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.SaleModel
	if err := applySort(query, filter, saleSortColumns, "date desc").
		Preload("Items").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	sales := make([]sale.Sale, 0, len(modelList))
	for i := range modelList {
		sales = append(sales, *modelList[i].ToDomain())
	}
	return sales, total, nil
}

// FindFinalizedBetween finds finalized sales with a date inside [start, end]
func (r *GormSaleRepository) FindFinalizedBetween(ctx context.Context, start, end time.Time) ([]sale.Sale, error) {
	var modelList []models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND date >= ? AND date <= ?", sale.StatusFinalized.String(), start, end).
		Order("date asc").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	sales := make([]sale.Sale, 0, len(modelList))
	for i := range modelList {
		sales = append(sales, *modelList[i].ToDomain())
	}
	return sales, nil
}

// CreateWithItems inserts the header and every item in one transaction
func (r *GormSaleRepository) CreateWithItems(ctx context.Context, s *sale.Sale) error {
	model := models.SaleModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// ReplaceItems deletes the existing items and writes the new set together
// with the header totals, all in one transaction.
func (r *GormSaleRepository) ReplaceItems(ctx context.Context, s *sale.Sale) error {
	model := models.SaleModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SaleItemModel{}, "sale_id = ?", s.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SaleModel{}).Where("id = ?", s.ID).
			Updates(headerColumns(model)).Error; err != nil {
			return err
		}
		return tx.Create(&model.Items).Error
	})
}

// UpdateHeader updates the header row only, leaving items untouched
func (r *GormSaleRepository) UpdateHeader(ctx context.Context, s *sale.Sale) error {
	model := models.SaleModelFromDomain(s)
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("id = ?", s.ID).
		Updates(headerColumns(model))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the sale and its items in one transaction
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SaleItemModel{}, "sale_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SaleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// headerColumns maps the mutable header fields for an update
func headerColumns(model *models.SaleModel) map[string]interface{} {
	return map[string]interface{}{
		"date":             model.Date,
		"subtotal":         model.Subtotal,
		"discount_percent": model.DiscountPercent,
		"discount_amount":  model.DiscountAmount,
		"total_cost":       model.TotalCost,
		"total":            model.Total,
		"total_profit":     model.TotalProfit,
		"total_units":      model.TotalUnits,
		"client_name":      model.ClientName,
		"notes":            model.Notes,
		"status":           model.Status,
		"finalized_at":     model.FinalizedAt,
		"cancelled_at":     model.CancelledAt,
		"updated_at":       model.UpdatedAt,
	}
}
