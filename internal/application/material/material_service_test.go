package material

import (
	"context"
	"testing"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

func newService(repo *mockMaterialRepo) *Service {
	return NewService(repo, zap.NewNop())
}

func TestService_Create(t *testing.T) {
	repo := new(mockMaterialRepo)
	svc := newService(repo)

	repo.On("FindByNameAndVariation", mock.Anything, "Tecido Algodao", "A").
		Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*material.Material")).Return(nil)

	minimum := decimal.NewFromInt(5)
	resp, err := svc.Create(context.Background(), CreateMaterialRequest{
		Name:         "Tecido Algodao",
		Category:     "Tecidos",
		UnitCost:     decimal.RequireFromString("12.50"),
		BaseUnit:     "metro",
		Variation:    "A",
		MinimumStock: &minimum,
		Conversions:  map[string]decimal.Decimal{"rolo": decimal.NewFromInt(50)},
	})

	require.NoError(t, err)
	assert.Equal(t, "Tecido Algodao", resp.Name)
	assert.Equal(t, "A", resp.Variation)
	assert.True(t, resp.MinimumStock.Equal(minimum))
	assert.True(t, resp.Conversions["rolo"].Equal(decimal.NewFromInt(50)))
	repo.AssertExpectations(t)
}

func TestService_CreateDuplicate(t *testing.T) {
	repo := new(mockMaterialRepo)
	svc := newService(repo)

	existing, err := material.NewMaterial("Tecido Algodao", "Tecidos", decimal.NewFromInt(2), "metro")
	require.NoError(t, err)
	repo.On("FindByNameAndVariation", mock.Anything, "Tecido Algodao", "").Return(existing, nil)

	_, err = svc.Create(context.Background(), CreateMaterialRequest{
		Name:     "Tecido Algodao",
		UnitCost: decimal.NewFromInt(2),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_CreateNegativeMinimum(t *testing.T) {
	repo := new(mockMaterialRepo)
	svc := newService(repo)

	repo.On("FindByNameAndVariation", mock.Anything, "Fita", "").Return(nil, shared.ErrNotFound)

	minimum := decimal.NewFromInt(-1)
	_, err := svc.Create(context.Background(), CreateMaterialRequest{
		Name:         "Fita",
		UnitCost:     decimal.NewFromInt(1),
		MinimumStock: &minimum,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MINIMUM_STOCK", domainErr.Code)
}

func TestService_UpdateRenameCollision(t *testing.T) {
	repo := new(mockMaterialRepo)
	svc := newService(repo)

	current, err := material.NewMaterial("Feltro", "Tecidos", decimal.NewFromInt(3), "metro")
	require.NoError(t, err)
	other, err := material.NewMaterial("Fita Cetim", "Aviamentos", decimal.NewFromInt(1), "metro")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, current.ID).Return(current, nil)
	repo.On("FindByNameAndVariation", mock.Anything, "Fita Cetim", "").Return(other, nil)

	_, err = svc.Update(context.Background(), current.ID, UpdateMaterialRequest{
		Name:         "Fita Cetim",
		UnitCost:     decimal.NewFromInt(3),
		MinimumStock: decimal.NewFromInt(1),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestService_AdjustStock(t *testing.T) {
	t.Run("entry then exit", func(t *testing.T) {
		repo := new(mockMaterialRepo)
		svc := newService(repo)

		m, err := material.NewMaterial("Feltro", "Tecidos", decimal.NewFromInt(3), "metro")
		require.NoError(t, err)
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(nil)

		resp, err := svc.AdjustStock(context.Background(), m.ID, StockMovementRequest{
			Kind: "entry", Quantity: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.True(t, resp.CurrentStock.Equal(decimal.NewFromInt(10)))
	})

	t.Run("exit beyond balance fails", func(t *testing.T) {
		repo := new(mockMaterialRepo)
		svc := newService(repo)

		m, err := material.NewMaterial("Feltro", "Tecidos", decimal.NewFromInt(3), "metro")
		require.NoError(t, err)
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

		_, err = svc.AdjustStock(context.Background(), m.ID, StockMovementRequest{
			Kind: "exit", Quantity: decimal.NewFromInt(5),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("retries on a version conflict", func(t *testing.T) {
		repo := new(mockMaterialRepo)
		svc := newService(repo)

		m, err := material.NewMaterial("Feltro", "Tecidos", decimal.NewFromInt(3), "metro")
		require.NoError(t, err)
		repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)
		repo.On("Save", mock.Anything, m).Return(shared.ErrConcurrencyConflict).Once()
		repo.On("Save", mock.Anything, m).Return(nil).Once()

		_, err = svc.AdjustStock(context.Background(), m.ID, StockMovementRequest{
			Kind: "entry", Quantity: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown movement kind", func(t *testing.T) {
		repo := new(mockMaterialRepo)
		svc := newService(repo)

		_, err := svc.AdjustStock(context.Background(), uuid.New(), StockMovementRequest{
			Kind: "teleport", Quantity: decimal.NewFromInt(1),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_MOVEMENT", domainErr.Code)
	})
}

func TestService_CostPreview(t *testing.T) {
	repo := new(mockMaterialRepo)
	svc := newService(repo)

	m, err := material.NewMaterial("Tecido", "Tecidos", decimal.RequireFromString("100"), "metro")
	require.NoError(t, err)
	require.NoError(t, m.SetConversion("rolo", decimal.NewFromInt(50)))
	repo.On("FindByID", mock.Anything, m.ID).Return(m, nil)

	// 25 rolos = 0.5 metro at 100/metro
	cost, err := svc.CostPreview(context.Background(), m.ID, decimal.NewFromInt(25), "rolo")
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(50)), cost.String())

	_, err = svc.CostPreview(context.Background(), m.ID, decimal.NewFromInt(1), "caixa")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrUnresolvedUnitConversion.Code, domainErr.Code)
}
