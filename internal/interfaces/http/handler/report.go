package handler

import (
	"strconv"

	reportapp "github.com/atelier/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles reporting API endpoints
type ReportHandler struct {
	BaseHandler
	service *reportapp.Service
	// forecastWindowDays is used when the request does not pass window_days
	forecastWindowDays int64
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.Service, forecastWindowDays int64) *ReportHandler {
	return &ReportHandler{service: service, forecastWindowDays: forecastWindowDays}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/dashboard", h.Dashboard)
		reports.GET("/monthly", h.MonthlyEvolution)
		reports.GET("/material-usage", h.MaterialUsage)
		reports.GET("/profitability", h.Profitability)
		reports.GET("/depletion", h.DepletionForecast)
	}
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// MonthlyEvolution handles GET /reports/monthly?months=12
func (h *ReportHandler) MonthlyEvolution(c *gin.Context) {
	months := 0
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 120 {
			h.BadRequest(c, "months must be between 1 and 120")
			return
		}
		months = parsed
	}

	evolution, err := h.service.MonthlyEvolution(c.Request.Context(), months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, evolution)
}

// MaterialUsage handles GET /reports/material-usage
func (h *ReportHandler) MaterialUsage(c *gin.Context) {
	ranking, err := h.service.MaterialUsage(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ranking)
}

// Profitability handles GET /reports/profitability
func (h *ReportHandler) Profitability(c *gin.Context) {
	ranking, err := h.service.Profitability(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ranking)
}

// DepletionForecast handles GET /reports/depletion?window_days=90
func (h *ReportHandler) DepletionForecast(c *gin.Context) {
	windowDays := h.forecastWindowDays
	if raw := c.Query("window_days"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 365 {
			h.BadRequest(c, "window_days must be between 1 and 365")
			return
		}
		windowDays = parsed
	}

	forecast, err := h.service.DepletionForecast(c.Request.Context(), windowDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, forecast)
}
