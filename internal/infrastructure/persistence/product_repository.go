package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productSortColumns is the allowlist for order-by clauses
var productSortColumns = map[string]bool{
	"name":       true,
	"category":   true,
	"total_cost": true,
	"sale_price": true,
	"created_at": true,
	"updated_at": true,
}

// GormProductRepository implements product.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	var modelList []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toProducts(modelList)
}

// FindByName finds a product by its unique name
func (r *GormProductRepository) FindByName(ctx context.Context, name string) (*product.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds products matching the filter with a total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.ProductModel
	if err := applySort(query, filter, productSortColumns, "name asc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	products, err := toProducts(modelList)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindAllActive finds every active product
func (r *GormProductRepository) FindAllActive(ctx context.Context) ([]product.Product, error) {
	var modelList []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name asc").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toProducts(modelList)
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *product.Product) error {
	model, err := models.ProductModelFromDomain(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a product permanently. Sale items keep their denormalized
// copy, so no cascade is involved.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// toProducts maps a model slice to domain aggregates
func toProducts(modelList []models.ProductModel) ([]product.Product, error) {
	products := make([]product.Product, 0, len(modelList))
	for i := range modelList {
		p, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}
