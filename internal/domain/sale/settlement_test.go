package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func snapshotFor(name string, cost, price string) ProductSnapshot {
	return ProductSnapshot{
		ID:        uuid.New(),
		Name:      name,
		TotalCost: dec(cost),
		SalePrice: dec(price),
	}
}

func TestDiscountPercentFor(t *testing.T) {
	assert.True(t, DiscountPercentFor(0).IsZero())
	assert.True(t, DiscountPercentFor(1).IsZero())
	assert.True(t, DiscountPercentFor(2).Equal(dec("5")))
	assert.True(t, DiscountPercentFor(3).Equal(dec("10")))
	assert.True(t, DiscountPercentFor(10).Equal(dec("10")), "tier does not scale beyond 3")
}

func TestSettle(t *testing.T) {
	t.Run("three unit sale earns the 10 percent tier", func(t *testing.T) {
		chaveiro := snapshotFor("Chaveiro", "14.41", "20.59")
		products := map[uuid.UUID]ProductSnapshot{chaveiro.ID: chaveiro}

		lines := []LineInput{
			{ProductID: chaveiro.ID, Quantity: 1},
			{ProductID: chaveiro.ID, Quantity: 1},
			{ProductID: chaveiro.ID, Quantity: 1},
		}
		settlement, err := Settle(lines, products)
		require.NoError(t, err)

		assert.Equal(t, int64(3), settlement.TotalUnits)
		assert.True(t, settlement.Subtotal.Equal(dec("61.77")), "subtotal %s", settlement.Subtotal)
		assert.True(t, settlement.DiscountPercent.Equal(dec("10")))
		assert.True(t, settlement.DiscountAmount.Equal(dec("6.18")), "discount %s", settlement.DiscountAmount)
		assert.True(t, settlement.Total.Equal(dec("55.59")), "total %s", settlement.Total)
		assert.True(t, settlement.TotalCost.Equal(dec("43.23")), "cost %s", settlement.TotalCost)
		assert.True(t, settlement.TotalProfit.Equal(dec("12.36")), "profit %s", settlement.TotalProfit)
	})

	t.Run("single unit earns no discount", func(t *testing.T) {
		p := snapshotFor("Pulseira", "10.00", "15.00")
		settlement, err := Settle(
			[]LineInput{{ProductID: p.ID, Quantity: 1}},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.NoError(t, err)
		assert.True(t, settlement.DiscountPercent.IsZero())
		assert.True(t, settlement.Total.Equal(dec("15.00")))
	})

	t.Run("two units earn five percent", func(t *testing.T) {
		p := snapshotFor("Pulseira", "10.00", "20.00")
		settlement, err := Settle(
			[]LineInput{{ProductID: p.ID, Quantity: 2}},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.NoError(t, err)
		assert.True(t, settlement.DiscountPercent.Equal(dec("5")))
		assert.True(t, settlement.DiscountAmount.Equal(dec("2.00")))
		assert.True(t, settlement.Total.Equal(dec("38.00")))
	})

	t.Run("gift lines count their raw quantity toward the tier", func(t *testing.T) {
		p := snapshotFor("Pulseira", "10.00", "20.00")
		settlement, err := Settle(
			[]LineInput{
				{ProductID: p.ID, Quantity: 1},
				{ProductID: p.ID, Quantity: 2, IsGift: true},
			},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(3), settlement.TotalUnits)
		assert.True(t, settlement.DiscountPercent.Equal(dec("10")))
	})

	t.Run("simulated margin reprices the line from the product cost", func(t *testing.T) {
		p := snapshotFor("Chaveiro", "14.41", "20.59")
		margin := dec("50")
		settlement, err := Settle(
			[]LineInput{{ProductID: p.ID, Quantity: 1, SimulatedMargin: &margin}},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.NoError(t, err)

		line := settlement.Lines[0]
		assert.True(t, line.OriginalUnitPrice.Equal(dec("20.59")))
		assert.True(t, line.FinalUnitPrice.Equal(dec("28.82")), "14.41 / 0.5, got %s", line.FinalUnitPrice)
		assert.True(t, line.LineProfit.Equal(dec("14.41")))
	})

	t.Run("line without simulated margin keeps the stored price", func(t *testing.T) {
		p := snapshotFor("Chaveiro", "14.41", "20.59")
		settlement, err := Settle(
			[]LineInput{{ProductID: p.ID, Quantity: 2}},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.NoError(t, err)
		assert.True(t, settlement.Lines[0].FinalUnitPrice.Equal(dec("20.59")))
		assert.True(t, settlement.Lines[0].LineValue.Equal(dec("41.18")))
	})

	t.Run("unknown product aborts settlement", func(t *testing.T) {
		p := snapshotFor("Pulseira", "10.00", "20.00")
		_, err := Settle(
			[]LineInput{
				{ProductID: p.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("quantity below one rejected", func(t *testing.T) {
		p := snapshotFor("Pulseira", "10.00", "20.00")
		_, err := Settle(
			[]LineInput{{ProductID: p.ID, Quantity: 0}},
			map[uuid.UUID]ProductSnapshot{p.ID: p},
		)
		require.Error(t, err)
	})

	t.Run("empty line list rejected", func(t *testing.T) {
		_, err := Settle(nil, nil)
		require.Error(t, err)
	})
}
