package handler

import (
	materialapp "github.com/atelier/backend/internal/application/material"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MaterialHandler handles material API endpoints
type MaterialHandler struct {
	BaseHandler
	service *materialapp.Service
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(service *materialapp.Service) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// RegisterRoutes registers material routes
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/materials")
	{
		materials.POST("", h.Create)
		materials.GET("", h.List)
		materials.GET("/low-stock", h.LowStock)
		materials.GET("/:id", h.GetByID)
		materials.PUT("/:id", h.Update)
		materials.DELETE("/:id", h.Delete)
		materials.POST("/:id/stock", h.AdjustStock)
		materials.GET("/:id/cost", h.CostPreview)
	}
}

// Create handles POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req materialapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	var query struct {
		Search   string `form:"search"`
		Category string `form:"category"`
		LowStock bool   `form:"low_stock"`
		Page     int    `form:"page" binding:"omitempty,min=1"`
		PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 50
	}

	items, total, err := h.service.List(c.Request.Context(), materialapp.ListFilter{
		Search:   query.Search,
		Category: query.Category,
		LowStock: query.LowStock,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, query.Page, query.PageSize)
}

// LowStock handles GET /materials/low-stock
func (h *MaterialHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID handles GET /materials/:id
func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid material id")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid material id")
		return
	}

	var req materialapp.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid material id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock handles POST /materials/:id/stock
func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid material id")
		return
	}

	var req materialapp.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CostPreview handles GET /materials/:id/cost?quantity=..&unit=..
func (h *MaterialHandler) CostPreview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid material id")
		return
	}

	quantity, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil || !quantity.IsPositive() {
		h.BadRequest(c, "quantity must be a positive number")
		return
	}

	cost, err := h.service.CostPreview(c.Request.Context(), id, quantity, c.Query("unit"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cost": cost})
}
