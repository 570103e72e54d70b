package report

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/report"
	"github.com/atelier/backend/internal/domain/sale"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultForecastWindowDays is the trailing sales window the depletion
// forecast samples when no explicit window is given.
const DefaultForecastWindowDays = 90

// Service assembles the read-side reports. Rollups that map cleanly to SQL
// live in the report repositories; rankings that need the unit conversion
// engine are computed here on loaded aggregates.
type Service struct {
	materialRepo  material.Repository
	productRepo   product.Repository
	saleRepo      sale.Repository
	salesRollup   report.SalesRepository
	inventoryRoll report.InventoryRepository
	clock         shared.Clock
	logger        *zap.Logger
}

// NewService creates a new report Service
func NewService(
	materialRepo material.Repository,
	productRepo product.Repository,
	saleRepo sale.Repository,
	salesRollup report.SalesRepository,
	inventoryRoll report.InventoryRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{
		materialRepo:  materialRepo,
		productRepo:   productRepo,
		saleRepo:      saleRepo,
		salesRollup:   salesRollup,
		inventoryRoll: inventoryRoll,
		clock:         clock,
		logger:        logger,
	}
}

// Dashboard builds the headline summary for the landing screen
func (s *Service) Dashboard(ctx context.Context) (*report.DashboardSummary, error) {
	stockValue, err := s.inventoryRoll.TotalStockValue(ctx)
	if err != nil {
		return nil, err
	}
	materialCount, err := s.inventoryRoll.MaterialCount(ctx)
	if err != nil {
		return nil, err
	}
	activeProducts, err := s.productRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.materialRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]report.LowStockMaterial, 0, len(lowStock))
	for i := range lowStock {
		m := &lowStock[i]
		low = append(low, report.LowStockMaterial{
			MaterialID:   m.ID,
			Name:         m.Name,
			Variation:    m.Variation,
			CurrentStock: m.CurrentStock,
			MinimumStock: m.MinimumStock,
			BaseUnit:     m.BaseUnit,
		})
	}

	return &report.DashboardSummary{
		TotalStockValue:    stockValue,
		MaterialCount:      materialCount,
		ActiveProductCount: int64(len(activeProducts)),
		LowStockCount:      int64(len(low)),
		LowStock:           low,
	}, nil
}

// MonthlyEvolution rolls finalized sales up by calendar month over the
// trailing number of months, newest month last.
func (s *Service) MonthlyEvolution(ctx context.Context, months int) ([]report.MonthlySales, error) {
	if months <= 0 {
		months = 12
	}
	now := s.clock.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	return s.salesRollup.MonthlyEvolution(ctx, start, now)
}

// MaterialUsage ranks materials by total consumption across all active
// products' bills of materials, converted to base units. A usage whose unit
// cannot be converted is skipped and logged rather than failing the whole
// report.
func (s *Service) MaterialUsage(ctx context.Context) ([]report.MaterialUsageRank, error) {
	products, err := s.productRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for i := range products {
		for _, u := range products[i].Usages {
			if !seen[u.MaterialID] {
				seen[u.MaterialID] = true
				ids = append(ids, u.MaterialID)
			}
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

	type rank struct {
		total    decimal.Decimal
		products map[uuid.UUID]bool
	}
	ranks := make(map[uuid.UUID]*rank)
	for i := range products {
		p := &products[i]
		for _, u := range p.Usages {
			m, ok := lookup[u.MaterialID]
			if !ok {
				s.logger.Warn("usage references a missing material",
					zap.String("product", p.Name),
					zap.String("material_id", u.MaterialID.String()))
				continue
			}
			base, err := m.BaseQuantityFor(u.Quantity, u.Unit)
			if err != nil {
				// Data-quality degradation: count the raw quantity rather
				// than dropping the material from the ranking entirely.
				s.logger.Warn("unresolved unit conversion in usage ranking, counting raw quantity",
					zap.String("product", p.Name),
					zap.String("material", m.Name),
					zap.String("unit", u.Unit))
				base = u.Quantity
			}
			r, ok := ranks[m.ID]
			if !ok {
				r = &rank{total: decimal.Zero, products: make(map[uuid.UUID]bool)}
				ranks[m.ID] = r
			}
			r.total = r.total.Add(base)
			r.products[p.ID] = true
		}
	}

	result := make([]report.MaterialUsageRank, 0, len(ranks))
	for id, r := range ranks {
		m := lookup[id]
		result = append(result, report.MaterialUsageRank{
			MaterialID:    id,
			Name:          m.Name,
			BaseUnit:      m.BaseUnit,
			TotalQuantity: r.total,
			ProductCount:  int64(len(r.products)),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalQuantity.GreaterThan(result[j].TotalQuantity)
	})
	return result, nil
}

// Profitability ranks active products by cached margin, most profitable first
func (s *Service) Profitability(ctx context.Context) ([]report.ProductProfitability, error) {
	products, err := s.productRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]report.ProductProfitability, 0, len(products))
	for i := range products {
		p := &products[i]
		result = append(result, report.ProductProfitability{
			ProductID:     p.ID,
			Name:          p.Name,
			TotalCost:     p.TotalCost,
			SalePrice:     p.SalePrice,
			ProfitPerUnit: p.ProfitPerUnit(),
			MarginPercent: p.RealMarginPercent(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MarginPercent.GreaterThan(result[j].MarginPercent)
	})
	return result, nil
}

// DepletionForecast projects stock horizons from the consumption embedded in
// finalized sales over the trailing window. Each sold item contributes its
// material snapshot times the quantity sold; snapshots that no longer parse
// or convert are skipped and logged.
func (s *Service) DepletionForecast(ctx context.Context, windowDays int64) ([]report.DepletionForecast, error) {
	if windowDays <= 0 {
		windowDays = DefaultForecastWindowDays
	}
	now := s.clock.Now()
	start := now.AddDate(0, 0, -int(windowDays))

	sales, err := s.saleRepo.FindFinalizedBetween(ctx, start, now)
	if err != nil {
		return nil, err
	}

	materials, _, err := s.materialRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10000, OrderBy: "name", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}
	lookup := make(map[uuid.UUID]*material.Material, len(materials))
	for i := range materials {
		lookup[materials[i].ID] = &materials[i]
	}

	consumed := make(map[uuid.UUID]decimal.Decimal)
	for i := range sales {
		for _, item := range sales[i].Items {
			if item.MaterialSnapshot == "" {
				continue
			}
			var usages []product.MaterialUsage
			if err := json.Unmarshal([]byte(item.MaterialSnapshot), &usages); err != nil {
				s.logger.Warn("unparseable material snapshot on sale item",
					zap.String("sale_code", sales[i].Code),
					zap.String("item_id", item.ID.String()),
					zap.Error(err))
				continue
			}
			qty := decimal.NewFromInt(item.Quantity)
			for _, u := range usages {
				m, ok := lookup[u.MaterialID]
				if !ok {
					continue
				}
				base, err := m.BaseQuantityFor(u.Quantity, u.Unit)
				if err != nil {
					s.logger.Warn("skipping snapshot usage with unresolved unit conversion",
						zap.String("material", m.Name),
						zap.String("unit", u.Unit))
					continue
				}
				consumed[m.ID] = consumed[m.ID].Add(base.Mul(qty))
			}
		}
	}

	result := make([]report.DepletionForecast, 0, len(materials))
	for i := range materials {
		m := &materials[i]
		windowTotal := consumed[m.ID]
		days, severity := report.ForecastDepletion(m.CurrentStock, windowTotal, windowDays)
		daily := decimal.Zero
		if windowTotal.IsPositive() {
			daily = windowTotal.Div(decimal.NewFromInt(windowDays)).Round(4)
		}
		result = append(result, report.DepletionForecast{
			MaterialID:       m.ID,
			Name:             m.Name,
			BaseUnit:         m.BaseUnit,
			CurrentStock:     m.CurrentStock,
			DailyConsumption: daily,
			DaysUntilEmpty:   days,
			Severity:         severity,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].DaysUntilEmpty, result[j].DaysUntilEmpty
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return result, nil
}
