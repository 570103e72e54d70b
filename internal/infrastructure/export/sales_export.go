// Package export renders finalized sales into an xlsx workbook.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	detailSheet  = "Vendas"
	summarySheet = "Resumo"
	dateLayout   = "2006-01-02"
)

// SalesExporter builds a two-sheet workbook out of the finalized sales in a
// date range: one row per sale plus a totals summary.
type SalesExporter struct {
	saleRepo sale.Repository
	logger   *zap.Logger
}

// NewSalesExporter creates a new SalesExporter
func NewSalesExporter(saleRepo sale.Repository, logger *zap.Logger) *SalesExporter {
	return &SalesExporter{saleRepo: saleRepo, logger: logger}
}

// Workbook is the rendered export ready to stream as an attachment
type Workbook struct {
	Filename string
	Content  []byte
}

// Export renders the finalized sales between start and end, inclusive
func (e *SalesExporter) Export(ctx context.Context, start, end time.Time) (*Workbook, error) {
	sales, err := e.saleRepo.FindFinalizedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading sales: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := buildDetailSheet(f, sales); err != nil {
		return nil, err
	}
	if err := buildSummarySheet(f, sales, start, end); err != nil {
		return nil, err
	}
	// excelize starts with a default sheet named Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(detailSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	e.logger.Info("sales export rendered",
		zap.Int("sales", len(sales)),
		zap.Time("start", start),
		zap.Time("end", end))

	return &Workbook{
		Filename: fmt.Sprintf("vendas-%s-a-%s.xlsx", start.Format(dateLayout), end.Format(dateLayout)),
		Content:  buf.Bytes(),
	}, nil
}

func buildDetailSheet(f *excelize.File, sales []sale.Sale) error {
	if _, err := f.NewSheet(detailSheet); err != nil {
		return err
	}

	headers := []interface{}{"Data", "Código", "Cliente", "Produtos", "Unidades", "Desconto", "Total", "Lucro"}
	if err := f.SetSheetRow(detailSheet, "A1", &headers); err != nil {
		return err
	}

	for i, s := range sales {
		row := []interface{}{
			s.Date.Format(dateLayout),
			s.Code,
			s.ClientName,
			productSummary(s.Items),
			s.TotalUnits,
			cell(s.DiscountAmount),
			cell(s.Total),
			cell(s.TotalProfit),
		}
		if err := f.SetSheetRow(detailSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func buildSummarySheet(f *excelize.File, sales []sale.Sale, start, end time.Time) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	revenue := decimal.Zero
	profit := decimal.Zero
	discount := decimal.Zero
	var units int64
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
		profit = profit.Add(s.TotalProfit)
		discount = discount.Add(s.DiscountAmount)
		units += s.TotalUnits
	}

	ticket := decimal.Zero
	if len(sales) > 0 {
		ticket = revenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	rows := [][]interface{}{
		{"Período", fmt.Sprintf("%s a %s", start.Format(dateLayout), end.Format(dateLayout))},
		{"Vendas", len(sales)},
		{"Unidades", units},
		{"Receita", cell(revenue)},
		{"Descontos", cell(discount)},
		{"Lucro", cell(profit)},
		{"Ticket médio", cell(ticket)},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

// productSummary joins the sale's lines into "2x Necessaire, 1x Chaveiro"
func productSummary(items []sale.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		label := fmt.Sprintf("%dx %s", it.Quantity, it.ProductName)
		if it.IsGift {
			label += " (brinde)"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

// cell converts a decimal to a float cell value, two places
func cell(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
