package handler

import (
	saleapp "github.com/atelier/backend/internal/application/sale"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale API endpoints
type SaleHandler struct {
	BaseHandler
	service *saleapp.Service
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service *saleapp.Service) *SaleHandler {
	return &SaleHandler{service: service}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Create)
		sales.GET("", h.List)
		sales.POST("/simulate", h.Simulate)
		sales.GET("/:id", h.GetByID)
		sales.PUT("/:id", h.Update)
		sales.DELETE("/:id", h.Delete)
		sales.POST("/:id/finalize", h.Finalize)
		sales.POST("/:id/cancel", h.Cancel)
	}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req saleapp.CreateSaleRequest
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

// Simulate handles POST /sales/simulate
func (h *SaleHandler) Simulate(c *gin.Context) {
	var req saleapp.SimulateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Simulate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		Search    string `form:"search"`
		StartDate string `form:"start" binding:"omitempty,datetime=2006-01-02"`
		EndDate   string `form:"end" binding:"omitempty,datetime=2006-01-02"`
		Page      int    `form:"page" binding:"omitempty,min=1"`
		PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=200"`
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

	items, total, err := h.service.List(c.Request.Context(), saleapp.ListFilter{
		Status:    query.Status,
		Search:    query.Search,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, query.Page, query.PageSize)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid sale id")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid sale id")
		return
	}

	var req saleapp.UpdateSaleRequest
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

// Finalize handles POST /sales/:id/finalize
func (h *SaleHandler) Finalize(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid sale id")
		return
	}

	resp, err := h.service.Finalize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /sales/:id/cancel
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid sale id")
		return
	}

	// The body is optional: cancelling without a reason is fine
	var req saleapp.CancelSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	resp, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "invalid sale id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
