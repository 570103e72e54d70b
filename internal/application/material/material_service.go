package material

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles material business operations
type Service struct {
	repo   material.Repository
	logger *zap.Logger
}

// NewService creates a new material Service
func NewService(repo material.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create creates a new material, enforcing the (name, variation) uniqueness
func (s *Service) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	existing, err := s.repo.FindByNameAndVariation(ctx, req.Name, req.Variation)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
			"A material with this name and variation already exists")
	}

	m, err := material.NewMaterial(req.Name, req.Category, req.UnitCost, req.BaseUnit)
	if err != nil {
		return nil, err
	}
	if err := m.SetVariation(req.Variation); err != nil {
		return nil, err
	}
	if req.MinimumStock != nil {
		if req.MinimumStock.IsNegative() {
			return nil, shared.NewDomainError("INVALID_MINIMUM_STOCK", "Minimum stock cannot be negative")
		}
		m.MinimumStock = *req.MinimumStock
	}
	for unit, factor := range req.Conversions {
		if err := m.SetConversion(unit, factor); err != nil {
			return nil, err
		}
	}
	m.Supplier = req.Supplier
	m.Notes = req.Notes
	m.ImageRef = req.ImageRef

	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return ToMaterialResponse(m), nil
}

// Update edits a material's attributes; stock is only touched via AdjustStock
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != m.Name || req.Variation != m.Variation {
		other, err := s.repo.FindByNameAndVariation(ctx, req.Name, req.Variation)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if other != nil && other.ID != m.ID {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
				"A material with this name and variation already exists")
		}
	}

	if err := m.UpdateDetails(req.Name, req.Category, req.UnitCost, req.BaseUnit, req.MinimumStock); err != nil {
		return nil, err
	}
	if err := m.SetVariation(req.Variation); err != nil {
		return nil, err
	}
	if req.Conversions != nil {
		m.Conversions = material.ConversionTable{}
		for unit, factor := range req.Conversions {
			if err := m.SetConversion(unit, factor); err != nil {
				return nil, err
			}
		}
	}
	m.Supplier = req.Supplier
	m.Notes = req.Notes
	m.ImageRef = req.ImageRef
	if req.Active != nil {
		if *req.Active {
			m.Activate()
		} else {
			m.Deactivate()
		}
	}

	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return ToMaterialResponse(m), nil
}

// GetByID retrieves a material
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMaterialResponse(m), nil
}

// List retrieves materials matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]MaterialResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.LowStock {
		domainFilter.Filters["low_stock"] = true
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		domainFilter.Page = filter.Page
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"

	materials, total, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]MaterialResponse, 0, len(materials))
	for i := range materials {
		responses = append(responses, *ToMaterialResponse(&materials[i]))
	}
	return responses, total, nil
}

// LowStock lists materials at or below their minimum threshold
func (s *Service) LowStock(ctx context.Context) ([]MaterialResponse, error) {
	materials, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]MaterialResponse, 0, len(materials))
	for i := range materials {
		responses = append(responses, *ToMaterialResponse(&materials[i]))
	}
	return responses, nil
}

// maxStockRetries bounds the optimistic-lock retry loop on stock movements
const maxStockRetries = 3

// AdjustStock applies an entry or exit movement. The read-modify-write is
// guarded by the aggregate version; a concurrent writer triggers a reload and
// retry, so two parallel movements never overwrite each other.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, req StockMovementRequest) (*MaterialResponse, error) {
	kind := material.MovementKind(req.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement kind must be entry or exit")
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	var lastErr error
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		m, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := m.ApplyMovement(kind, req.Quantity); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, m); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				s.logger.Warn("concurrent stock movement, retrying",
					zap.String("material_id", id.String()),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}
		return ToMaterialResponse(m), nil
	}
	return nil, lastErr
}

// Delete removes a material permanently
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// CostPreview prices a quantity in an arbitrary unit against a material,
// exposing the conversion engine to the costing form.
func (s *Service) CostPreview(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, unit string) (decimal.Decimal, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	cost, err := m.CostFor(quantity, unit)
	if err != nil {
		return decimal.Zero, err
	}
	return cost.Round(2), nil
}
