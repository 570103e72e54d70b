package persistence

import (
	"context"
	"testing"

	"github.com/atelier/backend/internal/domain/material"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFabric(t *testing.T, name, variation string) *material.Material {
	t.Helper()
	m, err := material.NewMaterial(name, "Tecidos", decimal.RequireFromString("2.00"), "metro")
	require.NoError(t, err)
	require.NoError(t, m.SetVariation(variation))
	require.NoError(t, m.SetConversion("rolo", decimal.NewFromInt(50)))
	return m
}

func TestGormMaterialRepository_SaveAndFind(t *testing.T) {
	repo := NewGormMaterialRepository(newTestDB(t))
	ctx := context.Background()

	fabric := newFabric(t, "Tecido Algodao", "A")
	require.NoError(t, repo.Save(ctx, fabric))

	t.Run("round-trips the aggregate including conversions", func(t *testing.T) {
		found, err := repo.FindByID(ctx, fabric.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tecido Algodao", found.Name)
		assert.Equal(t, "A", found.Variation)
		assert.Equal(t, "metro", found.BaseUnit)
		factor, ok := found.Conversions.FactorFor("rolo")
		require.True(t, ok)
		assert.True(t, factor.Equal(decimal.NewFromInt(50)))
	})

	t.Run("find by name and variation", func(t *testing.T) {
		found, err := repo.FindByNameAndVariation(ctx, "Tecido Algodao", "A")
		require.NoError(t, err)
		assert.Equal(t, fabric.ID, found.ID)

		_, err = repo.FindByNameAndVariation(ctx, "Tecido Algodao", "B")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing id yields not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormMaterialRepository_VersionGuard(t *testing.T) {
	repo := NewGormMaterialRepository(newTestDB(t))
	ctx := context.Background()

	fabric := newFabric(t, "Tecido", "")
	require.NoError(t, repo.Save(ctx, fabric))

	// Two copies loaded at the same version
	first, err := repo.FindByID(ctx, fabric.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, fabric.ID)
	require.NoError(t, err)

	require.NoError(t, first.RegisterEntry(decimal.NewFromInt(5)))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.RegisterEntry(decimal.NewFromInt(3)))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// Reloading picks up the committed write and the save goes through
	fresh, err := repo.FindByID(ctx, fabric.ID)
	require.NoError(t, err)
	assert.True(t, fresh.CurrentStock.Equal(decimal.NewFromInt(5)))
	require.NoError(t, fresh.RegisterEntry(decimal.NewFromInt(3)))
	require.NoError(t, repo.Save(ctx, fresh))

	final, err := repo.FindByID(ctx, fabric.ID)
	require.NoError(t, err)
	assert.True(t, final.CurrentStock.Equal(decimal.NewFromInt(8)))
}

func TestGormMaterialRepository_FindAll(t *testing.T) {
	repo := NewGormMaterialRepository(newTestDB(t))
	ctx := context.Background()

	names := []string{"Tecido", "Fita", "Botao"}
	for _, name := range names {
		m, err := material.NewMaterial(name, "Geral", decimal.NewFromInt(1), "unidade")
		require.NoError(t, err)
		require.NoError(t, m.RegisterEntry(decimal.NewFromInt(20)))
		if name == "Fita" {
			m.MinimumStock = decimal.NewFromInt(30)
		}
		require.NoError(t, repo.Save(ctx, m))
	}

	t.Run("paginates with total count", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		filter.OrderBy = "name"
		filter.OrderDir = "asc"

		page, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 2)
		assert.Equal(t, "Botao", page[0].Name)
		assert.Equal(t, "Fita", page[1].Name)
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "teci"

		page, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, page, 1)
		assert.Equal(t, "Tecido", page[0].Name)
	})

	t.Run("low stock narrows to materials at or below minimum", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["low_stock"] = true

		page, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, page, 1)
		assert.Equal(t, "Fita", page[0].Name)
	})

	t.Run("unknown sort column falls back to default", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "name; DROP TABLE materials"

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestGormMaterialRepository_FindLowStock(t *testing.T) {
	repo := NewGormMaterialRepository(newTestDB(t))
	ctx := context.Background()

	low, err := material.NewMaterial("Fita", "Geral", decimal.NewFromInt(1), "metro")
	require.NoError(t, err)
	low.MinimumStock = decimal.NewFromInt(10)
	require.NoError(t, low.RegisterEntry(decimal.NewFromInt(4)))
	require.NoError(t, repo.Save(ctx, low))

	fine, err := material.NewMaterial("Tecido", "Geral", decimal.NewFromInt(1), "metro")
	require.NoError(t, err)
	fine.MinimumStock = decimal.NewFromInt(1)
	require.NoError(t, fine.RegisterEntry(decimal.NewFromInt(20)))
	require.NoError(t, repo.Save(ctx, fine))

	result, err := repo.FindLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Fita", result[0].Name)
}

func TestGormMaterialRepository_Delete(t *testing.T) {
	repo := NewGormMaterialRepository(newTestDB(t))
	ctx := context.Background()

	m := newFabric(t, "Tecido", "")
	require.NoError(t, repo.Save(ctx, m))
	require.NoError(t, repo.Delete(ctx, m.ID))

	_, err := repo.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), shared.ErrNotFound)
}
