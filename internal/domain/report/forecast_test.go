package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int64) *int64 { return &n }

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityNone, SeverityFor(nil))
	assert.Equal(t, SeverityCritical, SeverityFor(days(0)))
	assert.Equal(t, SeverityCritical, SeverityFor(days(7)))
	assert.Equal(t, SeverityAlert, SeverityFor(days(8)))
	assert.Equal(t, SeverityAlert, SeverityFor(days(15)))
	assert.Equal(t, SeverityAttention, SeverityFor(days(16)))
	assert.Equal(t, SeverityAttention, SeverityFor(days(30)))
	assert.Equal(t, SeverityOK, SeverityFor(days(31)))
}

func TestForecastDepletion(t *testing.T) {
	t.Run("no consumption yields nil horizon", func(t *testing.T) {
		horizon, severity := ForecastDepletion(decimal.NewFromInt(10), decimal.Zero, 30)
		assert.Nil(t, horizon)
		assert.Equal(t, SeverityNone, severity)
	})

	t.Run("floors the remaining days", func(t *testing.T) {
		// 30 units consumed over 30 days = 1/day; 10.9 in stock -> 10 days
		horizon, severity := ForecastDepletion(decimal.RequireFromString("10.9"), decimal.NewFromInt(30), 30)
		require.NotNil(t, horizon)
		assert.Equal(t, int64(10), *horizon)
		assert.Equal(t, SeverityAlert, severity)
	})

	t.Run("heavy consumption is critical", func(t *testing.T) {
		horizon, severity := ForecastDepletion(decimal.NewFromInt(5), decimal.NewFromInt(60), 30)
		require.NotNil(t, horizon)
		assert.Equal(t, int64(2), *horizon)
		assert.Equal(t, SeverityCritical, severity)
	})

	t.Run("zero window is treated as no consumption", func(t *testing.T) {
		horizon, severity := ForecastDepletion(decimal.NewFromInt(5), decimal.NewFromInt(60), 0)
		assert.Nil(t, horizon)
		assert.Equal(t, SeverityNone, severity)
	})
}
