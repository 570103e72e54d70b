package sale

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/sale"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Service handles sale registration and lifecycle operations
type Service struct {
	saleRepo    sale.Repository
	productRepo product.Repository
	clock       shared.Clock
	logger      *zap.Logger
}

// NewService creates a new sale Service
func NewService(saleRepo sale.Repository, productRepo product.Repository, clock shared.Clock, logger *zap.Logger) *Service {
	return &Service{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		clock:       clock,
		logger:      logger,
	}
}

// parseLines converts request lines to settlement inputs
func parseLines(reqs []LineRequest) ([]sale.LineInput, error) {
	lines := make([]sale.LineInput, 0, len(reqs))
	for _, r := range reqs {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ITEM", "Sale item product id is not a valid UUID")
		}
		lines = append(lines, sale.LineInput{
			ProductID:       id,
			Quantity:        r.Quantity,
			SimulatedMargin: r.SimulatedMargin,
			IsGift:          r.IsGift,
			Notes:           r.Notes,
		})
	}
	return lines, nil
}

// snapshots loads every referenced product and freezes the data settlement
// needs, including a JSON copy of the bill of materials for audit.
func (s *Service) snapshots(ctx context.Context, lines []sale.LineInput) (map[uuid.UUID]sale.ProductSnapshot, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	products, err := s.productRepo.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	snaps := make(map[uuid.UUID]sale.ProductSnapshot, len(products))
	for i := range products {
		p := &products[i]
		usageJSON, err := json.Marshal(p.Usages)
		if err != nil {
			return nil, err
		}
		snaps[p.ID] = sale.ProductSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			TotalCost:     p.TotalCost,
			SalePrice:     p.SalePrice,
			UsageSnapshot: string(usageJSON),
		}
	}
	return snaps, nil
}

// settle resolves products and prices the requested lines
func (s *Service) settle(ctx context.Context, reqs []LineRequest) (*sale.Settlement, error) {
	lines, err := parseLines(reqs)
	if err != nil {
		return nil, err
	}
	snaps, err := s.snapshots(ctx, lines)
	if err != nil {
		return nil, err
	}
	return sale.Settle(lines, snaps)
}

// parseDate reads an optional YYYY-MM-DD date, defaulting to today
func (s *Service) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return s.clock.Now(), nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Sale date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// Simulate prices a basket without touching any stored data
func (s *Service) Simulate(ctx context.Context, req SimulateSaleRequest) (*SimulationResponse, error) {
	settlement, err := s.settle(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	return ToSimulationResponse(settlement), nil
}

// Create registers a new draft sale. The header and all items are persisted
// in one transaction, so a failure on any line leaves nothing behind.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	settlement, err := s.settle(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	newSale, err := sale.NewSale(sale.NewCode(s.clock.Now()), date, req.ClientName, req.Notes, settlement)
	if err != nil {
		return nil, err
	}
	if err := s.saleRepo.CreateWithItems(ctx, newSale); err != nil {
		return nil, err
	}
	s.logger.Info("sale registered",
		zap.String("sale_id", newSale.ID.String()),
		zap.String("code", newSale.Code),
		zap.Int64("units", newSale.TotalUnits),
		zap.String("total", newSale.Total.String()))
	return ToSaleResponse(newSale), nil
}

// Update replaces a draft sale's header and lines, repricing every line
// against current product data. Finalized and cancelled sales are immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	existing, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settlement, err := s.settle(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if err := existing.ReplaceItems(settlement); err != nil {
		return nil, err
	}
	if req.Date != "" {
		date, err := s.parseDate(req.Date)
		if err != nil {
			return nil, err
		}
		existing.Date = sale.DateOnly(date)
	}
	existing.ClientName = req.ClientName
	existing.Notes = req.Notes

	if err := s.saleRepo.ReplaceItems(ctx, existing); err != nil {
		return nil, err
	}
	return ToSaleResponse(existing), nil
}

// Finalize commits a draft sale
func (s *Service) Finalize(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	existing, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := existing.Finalize(); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateHeader(ctx, existing); err != nil {
		return nil, err
	}
	s.logger.Info("sale finalized",
		zap.String("sale_id", existing.ID.String()),
		zap.String("code", existing.Code))
	return ToSaleResponse(existing), nil
}

// Cancel voids a draft or finalized sale, recording the reason in the notes
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*SaleResponse, error) {
	existing, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := existing.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateHeader(ctx, existing); err != nil {
		return nil, err
	}
	s.logger.Info("sale cancelled",
		zap.String("sale_id", existing.ID.String()),
		zap.String("code", existing.Code))
	return ToSaleResponse(existing), nil
}

// GetByID retrieves a sale with its items
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	existing, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(existing), nil
}

// List retrieves sales matching the filter, newest first
func (s *Service) List(ctx context.Context, filter ListFilter) ([]SaleResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		if !sale.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown sale status filter")
		}
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.StartDate != "" {
		start, err := time.Parse(dateLayout, filter.StartDate)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_DATE", "Start date must be in YYYY-MM-DD format")
		}
		domainFilter.Filters["date_from"] = start
	}
	if filter.EndDate != "" {
		end, err := time.Parse(dateLayout, filter.EndDate)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_DATE", "End date must be in YYYY-MM-DD format")
		}
		domainFilter.Filters["date_to"] = end
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		domainFilter.Page = filter.Page
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "date"
	domainFilter.OrderDir = "desc"

	sales, total, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, *ToSaleResponse(&sales[i]))
	}
	return responses, total, nil
}

// Delete removes a sale and its items regardless of status
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.saleRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.saleRepo.Delete(ctx, id)
}
