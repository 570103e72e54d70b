package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/atelier/backend/internal/infrastructure/export"
	"github.com/gin-gonic/gin"
)

const exportDateLayout = "2006-01-02"

// xlsxContentType is the MIME type for xlsx workbooks
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler handles export API endpoints
type ExportHandler struct {
	BaseHandler
	exporter *export.SalesExporter
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exporter *export.SalesExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// RegisterRoutes registers export routes
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exports/sales", h.ExportSales)
}

// ExportSales handles GET /exports/sales?start=2025-01-01&end=2025-01-31
func (h *ExportHandler) ExportSales(c *gin.Context) {
	start, err := time.Parse(exportDateLayout, c.Query("start"))
	if err != nil {
		h.BadRequest(c, "start must be a YYYY-MM-DD date")
		return
	}
	end, err := time.Parse(exportDateLayout, c.Query("end"))
	if err != nil {
		h.BadRequest(c, "end must be a YYYY-MM-DD date")
		return
	}
	if end.Before(start) {
		h.BadRequest(c, "end must not be before start")
		return
	}

	workbook, err := h.exporter.Export(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workbook.Filename))
	c.Data(http.StatusOK, xlsxContentType, workbook.Content)
}
