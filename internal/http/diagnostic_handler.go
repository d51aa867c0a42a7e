package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// DiagnosticHandler expone el cuestionario de estres, el historial y la gestion del catalogo.
type DiagnosticHandler struct {
	logger      *zap.Logger
	catalog     *service.CatalogService
	diagnostics *service.DiagnosticService
}

func NewDiagnosticHandler(logger *zap.Logger, catalog *service.CatalogService, diagnostics *service.DiagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{logger: logger, catalog: catalog, diagnostics: diagnostics}
}

type categoryView struct {
	ID    diagnostic.Category `json:"id"`
	Label string              `json:"label"`
}

// ListEvents maneja GET /diagnostic/events.
func (h *DiagnosticHandler) ListEvents(c *gin.Context) {
	events, err := h.catalog.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, "list stress events", err)
		return
	}
	cats := diagnostic.Categories()
	views := make([]categoryView, len(cats))
	for i, cat := range cats {
		views[i] = categoryView{ID: cat, Label: cat.Label()}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "categories": views})
}

// Submit maneja POST /diagnostic. Anonimo o autenticado; solo se guarda con usuario.
func (h *DiagnosticHandler) Submit(c *gin.Context) {
	var req struct {
		EventIDs []int `json:"event_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "diagnostic", err)
		return
	}

	sub, err := h.diagnostics.Submit(c.Request.Context(), currentUserID(c), req.EventIDs)
	if err != nil {
		writeServiceError(c, h.logger, "submit diagnostic", err)
		return
	}
	status := http.StatusOK
	if sub.RecordID != "" {
		status = http.StatusCreated
	}
	c.JSON(status, sub)
}

// History maneja GET /diagnostic/history?limit=.
func (h *DiagnosticHandler) History(c *gin.Context) {
	records, err := h.diagnostics.History(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 20))
	if err != nil {
		writeServiceError(c, h.logger, "diagnostic history", err)
		return
	}
	if records == nil {
		records = []domain.DiagnosticRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": records})
}

// Get maneja GET /diagnostic/history/:id.
func (h *DiagnosticHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrDiagnosticNotFound.Error()})
		return
	}
	record, err := h.diagnostics.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		writeServiceError(c, h.logger, "get diagnostic", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostic": record})
}

// Delete maneja DELETE /diagnostic/history/:id.
func (h *DiagnosticHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrDiagnosticNotFound.Error()})
		return
	}
	if err := h.diagnostics.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		writeServiceError(c, h.logger, "delete diagnostic", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stressEventRequest struct {
	Label    string              `json:"label" binding:"required"`
	Weight   int                 `json:"weight" binding:"required"`
	Category diagnostic.Category `json:"category" binding:"required"`
}

// CreateEvent maneja POST /admin/stress-events.
func (h *DiagnosticHandler) CreateEvent(c *gin.Context) {
	var req stressEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create stress event", err)
		return
	}
	event, err := h.catalog.Create(c.Request.Context(), diagnostic.StressEvent{
		Label:    req.Label,
		Weight:   req.Weight,
		Category: req.Category,
	})
	if err != nil {
		writeServiceError(c, h.logger, "create stress event", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// UpdateEvent maneja PUT /admin/stress-events/:id.
func (h *DiagnosticHandler) UpdateEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrStressEventNotFound.Error()})
		return
	}
	var req stressEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update stress event", err)
		return
	}
	event, err := h.catalog.Update(c.Request.Context(), diagnostic.StressEvent{
		ID:       id,
		Label:    req.Label,
		Weight:   req.Weight,
		Category: req.Category,
	})
	if err != nil {
		writeServiceError(c, h.logger, "update stress event", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// DeleteEvent maneja DELETE /admin/stress-events/:id.
func (h *DiagnosticHandler) DeleteEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrStressEventNotFound.Error()})
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.logger, "delete stress event", err)
		return
	}
	c.Status(http.StatusNoContent)
}
