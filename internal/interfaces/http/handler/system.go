package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks that the database connection is alive
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{db: db, version: version, startTime: time.Now()}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/system/info", h.Info)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.Error(c, 503, "DATABASE_UNAVAILABLE", err.Error())
		return
	}
	h.Success(c, gin.H{"status": "ok"})
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":       "Atelier Backend API",
		"version":    h.version,
		"go_version": runtime.Version(),
		"uptime":     time.Since(h.startTime).String(),
	})
}
