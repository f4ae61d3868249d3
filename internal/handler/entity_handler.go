package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/controller"
	"github.com/edutrack-app/edutrack-bff/internal/middleware"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
	"github.com/edutrack-app/edutrack-bff/internal/service"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
	"github.com/edutrack-app/edutrack-bff/pkg/export"
	"github.com/edutrack-app/edutrack-bff/pkg/response"
)

// EntityHandler exposes the list-view intents for one entity type. The JSON
// view snapshot it returns is the presentation contract; rendering happens
// in the browser.
type EntityHandler struct {
	schema    schema.Schema
	registry  *controller.Registry
	dashboard *service.DashboardService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewEntityHandler constructs an EntityHandler for the given schema.
func NewEntityHandler(sch schema.Schema, registry *controller.Registry, dashboard *service.DashboardService, logger *zap.Logger) *EntityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityHandler{
		schema:    sch,
		registry:  registry,
		dashboard: dashboard,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// Register mounts the entity routes. The guard middleware protects the
// routes that execute mutations; guard and the audit factory may be nil.
func (h *EntityHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc, audit func(action string) gin.HandlerFunc) {
	if guard == nil {
		guard = func(c *gin.Context) { c.Next() }
	}
	if audit == nil {
		audit = func(string) gin.HandlerFunc {
			return func(c *gin.Context) { c.Next() }
		}
	}
	rg.GET("", h.View)
	rg.GET("/export", h.Export)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/sort", h.Sort)
	rg.POST("/form", h.StartAdd)
	rg.PATCH("/form", h.UpdateDraft)
	rg.DELETE("/form", h.CancelForm)
	rg.POST("/form/submit", guard, audit("submit"), h.Submit)
	rg.POST("/rows/:id/form", h.StartEdit)
	rg.DELETE("/rows/:id", guard, audit("delete"), h.Remove)
}

// View returns the current snapshot, applying any query-state parameters
// (search, sort, order, filters) before computing the visible list.
func (h *EntityHandler) View(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()

	query := c.Request.URL.Query()
	if _, ok := query["search"]; ok {
		if err := ctrl.SetSearchTerm(ctx, strings.TrimSpace(c.Query("search"))); err != nil {
			h.respondStale(c, ctrl, err)
			return
		}
	}
	if _, ok := query["sort"]; ok {
		if err := ctrl.ApplySort(ctx, c.Query("sort"), c.Query("order")); err != nil {
			h.respondStale(c, ctrl, err)
			return
		}
	}
	for _, name := range h.schema.Filters {
		if _, ok := query[name]; !ok {
			continue
		}
		if err := ctrl.SetFilter(ctx, name, c.Query(name)); err != nil {
			h.respondStale(c, ctrl, err)
			return
		}
	}

	if err := ctrl.EnsureLoaded(ctx); err != nil {
		h.respondStale(c, ctrl, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.View())
}

// Refresh force re-issues list() with the current query.
func (h *EntityHandler) Refresh(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.Refresh(c.Request.Context()); err != nil {
		h.respondStale(c, ctrl, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.View(), map[string]interface{}{
		"message": h.entityLabel() + " data refreshed",
	})
}

type sortRequest struct {
	Field string `json:"field" binding:"required"`
}

// Sort is the sort-click intent: flips direction on the active field,
// resets to ascending on a new one.
func (h *EntityHandler) Sort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.SetSort(c.Request.Context(), req.Field); err != nil {
		h.respondStale(c, ctrl, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.View())
}

// StartAdd opens the add form on an empty draft.
func (h *EntityHandler) StartAdd(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.StartAdd(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.View())
}

// StartEdit opens the edit form on a copy of the selected row.
func (h *EntityHandler) StartEdit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid record id"))
		return
	}
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.EnsureLoaded(c.Request.Context()); err != nil {
		h.respondStale(c, ctrl, err)
		return
	}
	if err := ctrl.StartEdit(id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ctrl.View())
}

// UpdateDraft applies field edits to the open form.
func (h *EntityHandler) UpdateDraft(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Apply in schema order so error reporting is deterministic.
	for _, f := range h.schema.Fields {
		raw, ok := fields[f.Name]
		if !ok {
			continue
		}
		if err := ctrl.UpdateDraftField(f.Name, raw); err != nil {
			response.ErrorWithData(c, err, ctrl.View())
			return
		}
	}
	response.JSON(c, http.StatusOK, ctrl.View())
}

// CancelForm discards the draft and closes the form.
func (h *EntityHandler) CancelForm(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctrl.Cancel()
	response.JSON(c, http.StatusOK, ctrl.View())
}

// Submit validates and saves the open form. Validation failures keep the
// form open and return the field messages with the snapshot.
func (h *EntityHandler) Submit(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view := ctrl.View()
	_, err = ctrl.Submit(c.Request.Context())
	if err != nil {
		response.ErrorWithData(c, err, ctrl.View())
		return
	}

	message := h.entityLabel() + " updated successfully!"
	if view.FormMode == controller.FormAdding {
		message = h.entityLabel() + " added successfully!"
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, ctrl.View(), map[string]interface{}{"message": message})
}

// Remove deletes a row. The confirm query parameter is the destructive
// action gate; without it no gateway call is made.
func (h *EntityHandler) Remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid record id"))
		return
	}
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	confirmed := c.Query("confirm") == "true"
	if err := ctrl.Remove(c.Request.Context(), id, confirmed); err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, ctrl.View(), map[string]interface{}{
		"message": h.entityLabel() + " deleted successfully!",
	})
}

// Export renders the current visible list as CSV or PDF.
func (h *EntityHandler) Export(c *gin.Context) {
	ctrl, err := h.controller(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.EnsureLoaded(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	dataset := h.dataset(ctrl)
	filename := h.schema.Name + "s"

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		data, err := h.pdf.Render(dataset, h.entityLabel()+" List")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export failed"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}

func (h *EntityHandler) dataset(ctrl *controller.Controller) export.Dataset {
	headers := make([]string, 0, len(h.schema.Fields))
	for _, f := range h.schema.Fields {
		headers = append(headers, f.Label)
	}
	items := ctrl.Visible()
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, 0, len(h.schema.Fields))
		for _, f := range h.schema.Fields {
			if f.Type == schema.TypeInt {
				row = append(row, strconv.Itoa(item.Int(f.Name)))
				continue
			}
			row = append(row, item.String(f.Name))
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (h *EntityHandler) controller(c *gin.Context) (*controller.Controller, error) {
	return h.registry.Get(middleware.SessionID(c), h.schema.Name)
}

// respondStale reports a failed list() while still returning the last-good
// snapshot: stale-but-available data beats an empty screen.
func (h *EntityHandler) respondStale(c *gin.Context, ctrl *controller.Controller, err error) {
	h.logger.Warn("list refresh failed", zap.String("entity", h.schema.Name), zap.Error(err))
	response.ErrorWithData(c, err, ctrl.View())
}

func (h *EntityHandler) entityLabel() string {
	return strings.ToUpper(h.schema.Name[:1]) + h.schema.Name[1:]
}
