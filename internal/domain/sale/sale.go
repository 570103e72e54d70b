package sale

import (
	"fmt"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a sale
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusFinalized, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusFinalized || target == StatusCancelled
	case StatusFinalized:
		return target == StatusCancelled
	case StatusCancelled:
		return false // terminal
	}
	return false
}

// Item is one sale line. Product data is denormalized at settlement time so a
// committed sale is immune to later product edits or deletion.
type Item struct {
	ID                uuid.UUID
	SaleID            uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int64
	OriginalUnitPrice decimal.Decimal
	SimulatedMargin   *decimal.Decimal
	FinalUnitPrice    decimal.Decimal
	LineValue         decimal.Decimal
	LineCost          decimal.Decimal
	LineProfit        decimal.Decimal
	IsGift            bool
	Notes             string
	MaterialSnapshot  string // JSON blob of the product's material usages at sale time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Sale is the sale header aggregate root, exclusively owning its items
type Sale struct {
	shared.BaseAggregateRoot
	Code            string
	Date            time.Time // date-only
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalCost       decimal.Decimal
	Total           decimal.Decimal
	TotalProfit     decimal.Decimal
	TotalUnits      int64
	ClientName      string
	Notes           string
	Status          Status
	Items           []Item
	FinalizedAt     *time.Time
	CancelledAt     *time.Time
}

// NewCode builds a human-readable unique sale code from a timestamp plus a
// random suffix.
func NewCode(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("VND-%s-%s", now.Format("20060102150405"), suffix)
}

// DateOnly strips the time-of-day while keeping the timestamp's own calendar
// day. Truncating against the UTC epoch would shift the day for non-UTC zones.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NewSale creates a new draft sale from a settlement result
func NewSale(code string, date time.Time, clientName, notes string, settlement *Settlement) (*Sale, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Sale code cannot be empty")
	}
	if settlement == nil || len(settlement.Lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "A sale requires at least one item")
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Date:              DateOnly(date),
		ClientName:        clientName,
		Notes:             notes,
		Status:            StatusDraft,
	}
	s.applySettlement(settlement)
	return s, nil
}

// applySettlement copies the settlement totals and lines into the aggregate
func (s *Sale) applySettlement(settlement *Settlement) {
	s.Subtotal = settlement.Subtotal
	s.DiscountPercent = settlement.DiscountPercent
	s.DiscountAmount = settlement.DiscountAmount
	s.TotalCost = settlement.TotalCost
	s.Total = settlement.Total
	s.TotalProfit = settlement.TotalProfit
	s.TotalUnits = settlement.TotalUnits

	now := time.Now()
	items := make([]Item, 0, len(settlement.Lines))
	for _, line := range settlement.Lines {
		items = append(items, Item{
			ID:                uuid.New(),
			SaleID:            s.ID,
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice,
			SimulatedMargin:   line.SimulatedMargin,
			FinalUnitPrice:    line.FinalUnitPrice,
			LineValue:         line.LineValue,
			LineCost:          line.LineCost,
			LineProfit:        line.LineProfit,
			IsGift:            line.IsGift,
			Notes:             line.Notes,
			MaterialSnapshot:  line.MaterialSnapshot,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	s.Items = items
	s.Touch()
}

// ReplaceItems swaps all lines for a freshly settled set. Only draft sales
// may be edited.
func (s *Sale) ReplaceItems(settlement *Settlement) error {
	if s.Status != StatusDraft {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot edit items of a %s sale", s.Status))
	}
	if settlement == nil || len(settlement.Lines) == 0 {
		return shared.NewDomainError("NO_ITEMS", "A sale requires at least one item")
	}
	s.applySettlement(settlement)
	return nil
}

// Finalize transitions the sale from draft to finalized
func (s *Sale) Finalize() error {
	if !s.Status.CanTransitionTo(StatusFinalized) {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot finalize a %s sale", s.Status))
	}
	now := time.Now()
	s.Status = StatusFinalized
	s.FinalizedAt = &now
	s.Touch()
	return nil
}

// Cancel transitions any non-cancelled sale to cancelled, appending the
// reason to the notes.
func (s *Sale) Cancel(reason string) error {
	if !s.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot cancel a %s sale", s.Status))
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	if reason != "" {
		if s.Notes != "" {
			s.Notes += "\n"
		}
		s.Notes += "Cancelamento: " + reason
	}
	s.Touch()
	return nil
}
