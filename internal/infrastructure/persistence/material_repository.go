package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// materialSortColumns is the allowlist for order-by clauses
var materialSortColumns = map[string]bool{
	"name":          true,
	"category":      true,
	"unit_cost":     true,
	"current_stock": true,
	"created_at":    true,
	"updated_at":    true,
}

// GormMaterialRepository implements material.Repository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*material.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllByIDs finds multiple materials by their IDs
func (r *GormMaterialRepository) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]material.Material, error) {
	if len(ids) == 0 {
		return []material.Material{}, nil
	}
	var modelList []models.MaterialModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toMaterials(modelList)
}

// FindByNameAndVariation finds a material by its unique (name, variation) pair
func (r *GormMaterialRepository) FindByNameAndVariation(ctx context.Context, name, variation string) (*material.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).
		Where("name = ? AND variation = ?", name, variation).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds materials matching the filter with a total count
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]material.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialModel{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(supplier) LIKE ?",
			pattern, pattern, pattern)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if low, ok := filter.Filters["low_stock"].(bool); ok && low {
		query = query.Where("current_stock <= minimum_stock")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.MaterialModel
	if err := applySort(query, filter, materialSortColumns, "name asc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	materials, err := toMaterials(modelList)
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// FindLowStock finds active materials at or below their minimum threshold
func (r *GormMaterialRepository) FindLowStock(ctx context.Context) ([]material.Material, error) {
	var modelList []models.MaterialModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND current_stock <= minimum_stock", true).
		Order("current_stock asc").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toMaterials(modelList)
}

// Save persists the aggregate. New aggregates insert; existing ones update
// behind a version guard, surfacing ErrConcurrencyConflict on a stale read.
func (r *GormMaterialRepository) Save(ctx context.Context, m *material.Material) error {
	model, err := models.MaterialModelFromDomain(m)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ? AND version = ?", m.ID, m.Version).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"variation":     model.Variation,
			"category":      model.Category,
			"unit_cost":     model.UnitCost,
			"base_unit":     model.BaseUnit,
			"current_stock": model.CurrentStock,
			"minimum_stock": model.MinimumStock,
			"conversions":   model.Conversions,
			"supplier":      model.Supplier,
			"notes":         model.Notes,
			"image_ref":     model.ImageRef,
			"active":        model.Active,
			"version":       m.Version + 1,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		m.IncrementVersion()
		return nil
	}

	// No row matched: either the aggregate is new or the version is stale
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ?", m.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Delete removes a material permanently
func (r *GormMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MaterialModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// toMaterials maps a model slice to domain aggregates
func toMaterials(modelList []models.MaterialModel) ([]material.Material, error) {
	materials := make([]material.Material, 0, len(modelList))
	for i := range modelList {
		m, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, nil
}

// applySort validates the requested order column against an allowlist and
// applies a deterministic default when the request is absent or unknown.
func applySort(query *gorm.DB, filter shared.Filter, allowed map[string]bool, fallback string) *gorm.DB {
	if filter.OrderBy != "" && allowed[filter.OrderBy] {
		dir := "asc"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "desc"
		}
		return query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))
	}
	return query.Order(fallback)
}
