package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/sale"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type mockSaleRepo struct {
	mock.Mock
}

func (m *mockSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func (m *mockSaleRepo) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sale.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *mockSaleRepo) FindFinalizedBetween(ctx context.Context, start, end time.Time) ([]sale.Sale, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sale.Sale), args.Error(1)
}

func (m *mockSaleRepo) CreateWithItems(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSaleRepo) ReplaceItems(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSaleRepo) UpdateHeader(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSaleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func finalizedSale(t *testing.T, code string, quantity int64) sale.Sale {
	t.Helper()
	productID := uuid.New()
	snaps := map[uuid.UUID]sale.ProductSnapshot{
		productID: {
			ID:        productID,
			Name:      "Necessaire",
			TotalCost: decimal.RequireFromString("14.41"),
			SalePrice: decimal.RequireFromString("20.59"),
		},
	}
	settlement, err := sale.Settle([]sale.LineInput{{ProductID: productID, Quantity: quantity}}, snaps)
	require.NoError(t, err)
	s, err := sale.NewSale(code, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "Maria", "", settlement)
	require.NoError(t, err)
	require.NoError(t, s.Finalize())
	return *s
}

func TestSalesExporter_Export(t *testing.T) {
	repo := new(mockSaleRepo)
	exporter := NewSalesExporter(repo, zap.NewNop())

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	repo.On("FindFinalizedBetween", mock.Anything, start, end).
		Return([]sale.Sale{finalizedSale(t, "VND-20250310-AAAAAA", 2)}, nil)

	workbook, err := exporter.Export(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, "vendas-2025-03-01-a-2025-03-31.xlsx", workbook.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(workbook.Content))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Vendas", "Resumo"}, f.GetSheetList())

	code, err := f.GetCellValue("Vendas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "VND-20250310-AAAAAA", code)

	products, err := f.GetCellValue("Vendas", "D2")
	require.NoError(t, err)
	assert.Equal(t, "2x Necessaire", products)

	// 2 units earn the 5% tier: 41.18 - 2.06 = 39.12
	total, err := f.GetCellValue("Vendas", "G2")
	require.NoError(t, err)
	assert.Equal(t, "39.12", total)

	saleCount, err := f.GetCellValue("Resumo", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", saleCount)

	revenue, err := f.GetCellValue("Resumo", "B4")
	require.NoError(t, err)
	assert.Equal(t, "39.12", revenue)
}

func TestSalesExporter_ExportEmptyRange(t *testing.T) {
	repo := new(mockSaleRepo)
	exporter := NewSalesExporter(repo, zap.NewNop())

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	repo.On("FindFinalizedBetween", mock.Anything, start, end).Return([]sale.Sale{}, nil)

	workbook, err := exporter.Export(context.Background(), start, end)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook.Content))
	require.NoError(t, err)
	defer f.Close()

	count, err := f.GetCellValue("Resumo", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0", count)
}
