package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/models"
	"github.com/edutrack-app/edutrack-bff/pkg/response"
)

// AuditLister reads recorded audit entries.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the mutation audit trail.
type AuditHandler struct {
	audit  AuditLister
	logger *zap.Logger
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(audit AuditLister, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{audit: audit, logger: logger}
}

// Register mounts the audit routes. The guard middleware may be nil.
func (h *AuditHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	if guard == nil {
		guard = func(c *gin.Context) { c.Next() }
	}
	rg.GET("", guard, h.List)
}

// List returns the newest audit entries.
func (h *AuditHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	entries, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list audit entries failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"count": len(entries)})
}
