package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Severity buckets a depletion forecast by urgency
type Severity string

const (
	SeverityNone      Severity = "none" // no measured consumption
	SeverityCritical  Severity = "critical"
	SeverityAlert     Severity = "alert"
	SeverityAttention Severity = "attention"
	SeverityOK        Severity = "ok"
)

// DepletionForecast projects when a material runs out at the consumption rate
// observed over a trailing sales window.
type DepletionForecast struct {
	MaterialID       uuid.UUID       `json:"material_id"`
	Name             string          `json:"name"`
	BaseUnit         string          `json:"base_unit"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	DailyConsumption decimal.Decimal `json:"daily_consumption"`
	DaysUntilEmpty   *int64          `json:"days_until_empty"` // nil when no consumption
	Severity         Severity        `json:"severity"`
}

// SeverityFor buckets days-until-empty: nil means no consumption was observed,
// 7 or fewer days is critical, up to 15 alert, up to 30 attention, beyond ok.
func SeverityFor(daysUntilEmpty *int64) Severity {
	switch {
	case daysUntilEmpty == nil:
		return SeverityNone
	case *daysUntilEmpty <= 7:
		return SeverityCritical
	case *daysUntilEmpty <= 15:
		return SeverityAlert
	case *daysUntilEmpty <= 30:
		return SeverityAttention
	default:
		return SeverityOK
	}
}

// ForecastDepletion derives daily consumption from a trailing window total and
// floors the days of stock remaining. Zero consumption yields a nil horizon.
func ForecastDepletion(currentStock, consumedInWindow decimal.Decimal, windowDays int64) (*int64, Severity) {
	if windowDays <= 0 || !consumedInWindow.IsPositive() {
		return nil, SeverityNone
	}
	daily := consumedInWindow.Div(decimal.NewFromInt(windowDays))
	days := currentStock.Div(daily).Floor().IntPart()
	return &days, SeverityFor(&days)
}
