package sale

import (
	"time"

	"github.com/atelier/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
)

// LineRequest is one requested sale line
type LineRequest struct {
	ProductID       string           `json:"product_id" binding:"required,uuid"`
	Quantity        int64            `json:"quantity" binding:"required,min=1"`
	SimulatedMargin *decimal.Decimal `json:"simulated_margin"`
	IsGift          bool             `json:"is_gift"`
	Notes           string           `json:"notes"`
}

// CreateSaleRequest is the payload for registering a sale
type CreateSaleRequest struct {
	Date       string        `json:"date" binding:"omitempty,datetime=2006-01-02"`
	ClientName string        `json:"client_name"`
	Notes      string        `json:"notes"`
	Items      []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateSaleRequest edits a draft sale's header and replaces its lines
type UpdateSaleRequest struct {
	Date       string        `json:"date" binding:"omitempty,datetime=2006-01-02"`
	ClientName string        `json:"client_name"`
	Notes      string        `json:"notes"`
	Items      []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// SimulateSaleRequest prices a basket without persisting anything
type SimulateSaleRequest struct {
	Items []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// CancelSaleRequest carries the cancellation reason
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// ListFilter constrains the sale listing. StartDate and EndDate are
// inclusive YYYY-MM-DD bounds on the sale date.
type ListFilter struct {
	Status    string
	Search    string
	StartDate string
	EndDate   string
	Page      int
	PageSize  int
}

// ItemResponse is one settled sale line in a response
type ItemResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	Quantity          int64            `json:"quantity"`
	OriginalUnitPrice decimal.Decimal  `json:"original_unit_price"`
	SimulatedMargin   *decimal.Decimal `json:"simulated_margin,omitempty"`
	FinalUnitPrice    decimal.Decimal  `json:"final_unit_price"`
	LineValue         decimal.Decimal  `json:"line_value"`
	LineCost          decimal.Decimal  `json:"line_cost"`
	LineProfit        decimal.Decimal  `json:"line_profit"`
	IsGift            bool             `json:"is_gift"`
	Notes             string           `json:"notes,omitempty"`
}

// SaleResponse is the external representation of a sale
type SaleResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Date            string          `json:"date"`
	Status          string          `json:"status"`
	ClientName      string          `json:"client_name,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TotalUnits      int64           `json:"total_units"`
	Items           []ItemResponse  `json:"items"`
	FinalizedAt     *time.Time      `json:"finalized_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SimulationResponse is the priced preview of a basket
type SimulationResponse struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Total             decimal.Decimal `json:"total"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	TotalUnits        int64           `json:"total_units"`
	RealMarginPercent decimal.Decimal `json:"real_margin_percent"`
	Items             []ItemResponse  `json:"items"`
}

// ToSaleResponse maps the aggregate to its external representation
func ToSaleResponse(s *sale.Sale) *SaleResponse {
	items := make([]ItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ItemResponse{
			ID:                it.ID.String(),
			ProductID:         it.ProductID.String(),
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			OriginalUnitPrice: it.OriginalUnitPrice,
			SimulatedMargin:   it.SimulatedMargin,
			FinalUnitPrice:    it.FinalUnitPrice,
			LineValue:         it.LineValue,
			LineCost:          it.LineCost,
			LineProfit:        it.LineProfit,
			IsGift:            it.IsGift,
			Notes:             it.Notes,
		})
	}
	return &SaleResponse{
		ID:              s.ID.String(),
		Code:            s.Code,
		Date:            s.Date.Format("2006-01-02"),
		Status:          s.Status.String(),
		ClientName:      s.ClientName,
		Notes:           s.Notes,
		Subtotal:        s.Subtotal,
		DiscountPercent: s.DiscountPercent,
		DiscountAmount:  s.DiscountAmount,
		Total:           s.Total,
		TotalCost:       s.TotalCost,
		TotalProfit:     s.TotalProfit,
		TotalUnits:      s.TotalUnits,
		Items:           items,
		FinalizedAt:     s.FinalizedAt,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToSimulationResponse maps a settlement preview to its external shape
func ToSimulationResponse(settlement *sale.Settlement) *SimulationResponse {
	items := make([]ItemResponse, 0, len(settlement.Lines))
	for _, line := range settlement.Lines {
		items = append(items, ItemResponse{
			ProductID:         line.ProductID.String(),
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
		})
	}
	return &SimulationResponse{
		Subtotal:          settlement.Subtotal,
		DiscountPercent:   settlement.DiscountPercent,
		DiscountAmount:    settlement.DiscountAmount,
		Total:             settlement.Total,
		TotalCost:         settlement.TotalCost,
		TotalProfit:       settlement.TotalProfit,
		TotalUnits:        settlement.TotalUnits,
		RealMarginPercent: settlement.RealMarginPercent,
		Items:             items,
	}
}
