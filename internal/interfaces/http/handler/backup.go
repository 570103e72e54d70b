package handler

import (
	"github.com/atelier/backend/internal/infrastructure/backup"
	"github.com/gin-gonic/gin"
)

// BackupHandler handles backup API endpoints
type BackupHandler struct {
	BaseHandler
	manager *backup.Manager
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(manager *backup.Manager) *BackupHandler {
	return &BackupHandler{manager: manager}
}

// RegisterRoutes registers backup routes
func (h *BackupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	backups := rg.Group("/backups")
	{
		backups.POST("", h.Create)
		backups.GET("", h.List)
		backups.GET("/:name/verify", h.Verify)
	}
}

// Create handles POST /backups
func (h *BackupHandler) Create(c *gin.Context) {
	result, err := h.manager.CreateSnapshot()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.AlreadyExistedToday {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// List handles GET /backups
func (h *BackupHandler) List(c *gin.Context) {
	snapshots, err := h.manager.ListSnapshots()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshots)
}

// Verify handles GET /backups/:name/verify
func (h *BackupHandler) Verify(c *gin.Context) {
	name := c.Param("name")
	if err := h.manager.VerifySnapshot(name); err != nil {
		h.Success(c, gin.H{"name": name, "valid": false, "detail": err.Error()})
		return
	}
	h.Success(c, gin.H{"name": name, "valid": true})
}
