package product

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles product costing and lifecycle operations
type Service struct {
	productRepo  product.Repository
	materialRepo material.Repository
	clock        shared.Clock
	logger       *zap.Logger
}

// NewService creates a new product Service
func NewService(productRepo product.Repository, materialRepo material.Repository, clock shared.Clock, logger *zap.Logger) *Service {
	return &Service{
		productRepo:  productRepo,
		materialRepo: materialRepo,
		clock:        clock,
		logger:       logger,
	}
}

// parseUsages converts request usages to domain values
func parseUsages(reqs []UsageRequest) ([]product.MaterialUsage, error) {
	usages := make([]product.MaterialUsage, 0, len(reqs))
	for _, r := range reqs {
		id, err := uuid.Parse(r.MaterialID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_USAGE", "Material usage id is not a valid UUID")
		}
		usages = append(usages, product.MaterialUsage{
			MaterialID: id,
			Quantity:   r.Quantity,
			Unit:       r.Unit,
		})
	}
	return usages, nil
}

// materialLookup fetches every material referenced by the usages
func (s *Service) materialLookup(ctx context.Context, usages []product.MaterialUsage) (map[uuid.UUID]*material.Material, error) {
	ids := make([]uuid.UUID, 0, len(usages))
	seen := make(map[uuid.UUID]bool, len(usages))
	for _, u := range usages {
		if !seen[u.MaterialID] {
			seen[u.MaterialID] = true
			ids = append(ids, u.MaterialID)
		}
	}
	materials, err := s.materialRepo.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	lookup := make(map[uuid.UUID]*material.Material, len(materials))
	for i := range materials {
		lookup[materials[i].ID] = &materials[i]
	}
	return lookup, nil
}

// cost computes the breakdown for the given parameters with current material costs
func (s *Service) cost(ctx context.Context, usages []product.MaterialUsage, laborHours, laborRate, margin decimal.Decimal, additional product.AdditionalCosts) (product.CostBreakdown, error) {
	lookup, err := s.materialLookup(ctx, usages)
	if err != nil {
		return product.CostBreakdown{}, err
	}
	return product.ComputeCosts(usages, lookup, laborHours, laborRate, margin, additional)
}

// Create creates a product and computes its initial cost breakdown
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A product with this name already exists")
	}

	p, err := product.NewProduct(req.Name, req.LaborHours, req.LaborRate, req.MarginPercent)
	if err != nil {
		return nil, err
	}
	usages, err := parseUsages(req.Usages)
	if err != nil {
		return nil, err
	}
	if err := p.SetUsages(usages); err != nil {
		return nil, err
	}
	p.Description = req.Description
	p.Category = req.Category
	p.Additional = req.Additional.ToDomain()
	p.ImageRef = req.ImageRef

	breakdown, err := s.cost(ctx, p.Usages, p.LaborHours, p.LaborRate, p.MarginPercent, p.Additional)
	if err != nil {
		return nil, err
	}
	p.ApplyCosting(breakdown, s.clock.Now())

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// Update edits a product and refreshes its cost breakdown
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != p.Name {
		other, err := s.productRepo.FindByName(ctx, req.Name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if other != nil && other.ID != p.ID {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "A product with this name already exists")
		}
		if err := p.Rename(req.Name); err != nil {
			return nil, err
		}
	}
	if err := p.UpdatePricing(req.LaborHours, req.LaborRate, req.MarginPercent); err != nil {
		return nil, err
	}
	usages, err := parseUsages(req.Usages)
	if err != nil {
		return nil, err
	}
	if err := p.SetUsages(usages); err != nil {
		return nil, err
	}
	p.Description = req.Description
	p.Category = req.Category
	p.Additional = req.Additional.ToDomain()
	p.ImageRef = req.ImageRef
	if req.Active != nil {
		p.Active = *req.Active
	}

	breakdown, err := s.cost(ctx, p.Usages, p.LaborHours, p.LaborRate, p.MarginPercent, p.Additional)
	if err != nil {
		return nil, err
	}
	p.ApplyCosting(breakdown, s.clock.Now())

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// Recalculate refreshes the cached cost fields from current material costs.
// Idempotent when material costs have not changed.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.cost(ctx, p.Usages, p.LaborHours, p.LaborRate, p.MarginPercent, p.Additional)
	if err != nil {
		return nil, err
	}
	p.ApplyCosting(breakdown, s.clock.Now())
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// RecalculateAll refreshes every active product, skipping products whose
// bill of materials no longer resolves and reporting them back.
func (s *Service) RecalculateAll(ctx context.Context) (updated int, failed []string, err error) {
	products, err := s.productRepo.FindAllActive(ctx)
	if err != nil {
		return 0, nil, err
	}
	for i := range products {
		p := &products[i]
		breakdown, err := s.cost(ctx, p.Usages, p.LaborHours, p.LaborRate, p.MarginPercent, p.Additional)
		if err != nil {
			s.logger.Warn("skipping product during bulk recalculation",
				zap.String("product_id", p.ID.String()),
				zap.String("product", p.Name),
				zap.Error(err))
			failed = append(failed, p.Name)
			continue
		}
		p.ApplyCosting(breakdown, s.clock.Now())
		if err := s.productRepo.Save(ctx, p); err != nil {
			return updated, failed, err
		}
		updated++
	}
	return updated, failed, nil
}

// SimulateMargins prices candidate margins against a cost taken either from
// the request or from a stored product. No stored data is mutated.
func (s *Service) SimulateMargins(ctx context.Context, req SimulateMarginsRequest) ([]product.MarginSimulation, error) {
	totalCost := req.TotalCost
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, shared.ErrInvalidInput
		}
		p, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		totalCost = p.TotalCost
	}
	if totalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}
	return product.SimulateMargins(totalCost, req.Margins), nil
}

// GetByID retrieves a product
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// List retrieves products matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		domainFilter.Page = filter.Page
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"

	products, total, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *ToProductResponse(&products[i]))
	}
	return responses, total, nil
}

// Delete removes a product permanently. Sale lines keep their denormalized
// snapshot, so history survives the deletion.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
