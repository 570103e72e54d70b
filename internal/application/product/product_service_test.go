package product

import (
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/product"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProductRepo) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *mockProductRepo) FindByName(ctx context.Context, name string) (*product.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]product.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]product.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) FindAllActive(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockMaterialRepo struct {
	mock.Mock
}

func (m *mockMaterialRepo) FindByID(ctx context.Context, id uuid.UUID) (*material.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*material.Material), args.Error(1)
}

func (m *mockMaterialRepo) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]material.Material, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]material.Material), args.Error(1)
}

func (m *mockMaterialRepo) FindByNameAndVariation(ctx context.Context, name, variation string) (*material.Material, error) {
	args := m.Called(ctx, name, variation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*material.Material), args.Error(1)
}

func (m *mockMaterialRepo) FindAll(ctx context.Context, filter shared.Filter) ([]material.Material, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]material.Material), args.Get(1).(int64), args.Error(2)
}

func (m *mockMaterialRepo) FindLowStock(ctx context.Context) ([]material.Material, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]material.Material), args.Error(1)
}

func (m *mockMaterialRepo) Save(ctx context.Context, mat *material.Material) error {
	args := m.Called(ctx, mat)
	return args.Error(0)
}

func (m *mockMaterialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestMaterial(t *testing.T, name string, unitCost string) *material.Material {
	t.Helper()
	m, err := material.NewMaterial(name, "Geral", decimal.RequireFromString(unitCost), "metro")
	require.NoError(t, err)
	return m
}

func fixedClock() shared.FixedClock {
	return shared.FixedClock{Instant: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func TestServiceCreate(t *testing.T) {
	t.Run("creates product with computed costs", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		materialRepo := new(mockMaterialRepo)
		svc := NewService(productRepo, materialRepo, fixedClock(), zap.NewNop())

		fabric := newTestMaterial(t, "Tecido", "10.00")

		productRepo.On("FindByName", mock.Anything, "Necessaire").Return(nil, shared.ErrNotFound)
		materialRepo.On("FindAllByIDs", mock.Anything, []uuid.UUID{fabric.ID}).
			Return([]material.Material{*fabric}, nil)
		productRepo.On("Save", mock.Anything, mock.AnythingOfType("*product.Product")).Return(nil)

		resp, err := svc.Create(context.Background(), CreateProductRequest{
			Name:          "Necessaire",
			LaborHours:    decimal.RequireFromString("0.5"),
			LaborRate:     decimal.RequireFromString("20.00"),
			MarginPercent: decimal.NewFromInt(30),
			Usages: []UsageRequest{
				{MaterialID: fabric.ID.String(), Quantity: decimal.RequireFromString("0.5"), Unit: "metro"},
			},
		})
		require.NoError(t, err)

		// 0.5m x 10.00 + 0.5h x 20.00 = 15.00; price = 15 / 0.7
		assert.True(t, resp.MaterialCost.Equal(decimal.RequireFromString("5")), resp.MaterialCost.String())
		assert.True(t, resp.LaborCost.Equal(decimal.RequireFromString("10")))
		assert.True(t, resp.TotalCost.Equal(decimal.RequireFromString("15")))
		assert.True(t, resp.SalePrice.Equal(decimal.RequireFromString("21.43")))
		require.NotNil(t, resp.CostedAt)
		productRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		materialRepo := new(mockMaterialRepo)
		svc := NewService(productRepo, materialRepo, fixedClock(), zap.NewNop())

		existing, err := product.NewProduct("Necessaire", decimal.Zero, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		productRepo.On("FindByName", mock.Anything, "Necessaire").Return(existing, nil)

		_, err = svc.Create(context.Background(), CreateProductRequest{Name: "Necessaire"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrAlreadyExists.Code, domainErr.Code)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("aborts on unresolved unit conversion", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		materialRepo := new(mockMaterialRepo)
		svc := NewService(productRepo, materialRepo, fixedClock(), zap.NewNop())

		fabric := newTestMaterial(t, "Tecido", "10.00")
		productRepo.On("FindByName", mock.Anything, "Necessaire").Return(nil, shared.ErrNotFound)
		materialRepo.On("FindAllByIDs", mock.Anything, mock.Anything).
			Return([]material.Material{*fabric}, nil)

		_, err := svc.Create(context.Background(), CreateProductRequest{
			Name: "Necessaire",
			Usages: []UsageRequest{
				{MaterialID: fabric.ID.String(), Quantity: decimal.NewFromInt(2), Unit: "rolo"},
			},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrUnresolvedUnitConversion.Code, domainErr.Code)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestServiceRecalculate(t *testing.T) {
	t.Run("refreshes cached costs from current material cost", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		materialRepo := new(mockMaterialRepo)
		svc := NewService(productRepo, materialRepo, fixedClock(), zap.NewNop())

		fabric := newTestMaterial(t, "Tecido", "12.00")
		p, err := product.NewProduct("Necessaire", decimal.Zero, decimal.Zero, decimal.NewFromInt(30))
		require.NoError(t, err)
		require.NoError(t, p.SetUsages([]product.MaterialUsage{
			{MaterialID: fabric.ID, Quantity: decimal.NewFromInt(1), Unit: "metro"},
		}))
		p.TotalCost = decimal.RequireFromString("10.00") // stale cache

		productRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		materialRepo.On("FindAllByIDs", mock.Anything, []uuid.UUID{fabric.ID}).
			Return([]material.Material{*fabric}, nil)
		productRepo.On("Save", mock.Anything, p).Return(nil)

		resp, err := svc.Recalculate(context.Background(), p.ID)
		require.NoError(t, err)
		assert.True(t, resp.TotalCost.Equal(decimal.RequireFromString("12")))
		assert.True(t, resp.SalePrice.Equal(decimal.RequireFromString("17.14")))
	})
}

func TestServiceRecalculateAll(t *testing.T) {
	t.Run("skips products whose bill of materials no longer resolves", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		materialRepo := new(mockMaterialRepo)
		svc := NewService(productRepo, materialRepo, fixedClock(), zap.NewNop())

		fabric := newTestMaterial(t, "Tecido", "10.00")

		ok, err := product.NewProduct("Necessaire", decimal.Zero, decimal.Zero, decimal.NewFromInt(30))
		require.NoError(t, err)
		require.NoError(t, ok.SetUsages([]product.MaterialUsage{
			{MaterialID: fabric.ID, Quantity: decimal.NewFromInt(1)},
		}))

		orphanID := uuid.New()
		broken, err := product.NewProduct("Chaveiro", decimal.Zero, decimal.Zero, decimal.NewFromInt(30))
		require.NoError(t, err)
		require.NoError(t, broken.SetUsages([]product.MaterialUsage{
			{MaterialID: orphanID, Quantity: decimal.NewFromInt(1)},
		}))

		productRepo.On("FindAllActive", mock.Anything).Return([]product.Product{*ok, *broken}, nil)
		materialRepo.On("FindAllByIDs", mock.Anything, []uuid.UUID{fabric.ID}).
			Return([]material.Material{*fabric}, nil)
		materialRepo.On("FindAllByIDs", mock.Anything, []uuid.UUID{orphanID}).
			Return([]material.Material{}, nil)
		productRepo.On("Save", mock.Anything, mock.AnythingOfType("*product.Product")).Return(nil).Once()

		updated, failed, err := svc.RecalculateAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, updated)
		assert.Equal(t, []string{"Chaveiro"}, failed)
		productRepo.AssertExpectations(t)
	})
}

func TestServiceSimulateMargins(t *testing.T) {
	t.Run("prices margins against an explicit cost", func(t *testing.T) {
		svc := NewService(new(mockProductRepo), new(mockMaterialRepo), fixedClock(), zap.NewNop())

		sims, err := svc.SimulateMargins(context.Background(), SimulateMarginsRequest{
			TotalCost: decimal.RequireFromString("14.41"),
			Margins:   []decimal.Decimal{decimal.NewFromInt(30), decimal.NewFromInt(50)},
		})
		require.NoError(t, err)
		require.Len(t, sims, 2)
		assert.True(t, sims[0].SalePrice.Equal(decimal.RequireFromString("20.59")))
		assert.True(t, sims[1].SalePrice.Equal(decimal.RequireFromString("28.82")))
	})

	t.Run("resolves cost from a stored product", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		svc := NewService(productRepo, new(mockMaterialRepo), fixedClock(), zap.NewNop())

		p, err := product.NewProduct("Necessaire", decimal.Zero, decimal.Zero, decimal.NewFromInt(30))
		require.NoError(t, err)
		p.TotalCost = decimal.RequireFromString("10.00")
		productRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		sims, err := svc.SimulateMargins(context.Background(), SimulateMarginsRequest{
			ProductID: p.ID.String(),
			Margins:   []decimal.Decimal{decimal.NewFromInt(20)},
		})
		require.NoError(t, err)
		require.Len(t, sims, 1)
		assert.True(t, sims[0].SalePrice.Equal(decimal.RequireFromString("12.5")))
	})
}
