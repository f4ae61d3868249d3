package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/service"
	"github.com/edutrack-app/edutrack-bff/pkg/response"
)

// DashboardHandler serves the aggregate summary for the dashboard home page.
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Register mounts the dashboard routes.
func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
}

// Summary returns the cached or freshly composed aggregate counts.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, cached, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"cached": cached})
}
