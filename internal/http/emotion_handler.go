package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// EmotionHandler expone el diario de emociones del usuario autenticado.
type EmotionHandler struct {
	logger   *zap.Logger
	emotions *service.EmotionService
}

func NewEmotionHandler(logger *zap.Logger, emotions *service.EmotionService) *EmotionHandler {
	return &EmotionHandler{logger: logger, emotions: emotions}
}

// parsePeriod acepta from/to como RFC3339 o fecha YYYY-MM-DD; "to" en formato fecha cubre el dia entero.
func parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseDateParam(c.Query("from"), false)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseDateParam(c.Query("to"), true)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDateParam(raw string, endOfDay bool) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// List maneja GET /emotions?from=&to=.
func (h *EmotionHandler) List(c *gin.Context) {
	from, to, ok := parsePeriod(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidPeriod.Error()})
		return
	}
	entries, err := h.emotions.List(c.Request.Context(), currentUserID(c), from, to)
	if err != nil {
		writeServiceError(c, h.logger, "list emotions", err)
		return
	}
	if entries == nil {
		entries = []domain.EmotionEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Summary maneja GET /emotions/summary?from=&to=.
func (h *EmotionHandler) Summary(c *gin.Context) {
	from, to, ok := parsePeriod(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidPeriod.Error()})
		return
	}
	summary, err := h.emotions.Summary(c.Request.Context(), currentUserID(c), from, to)
	if err != nil {
		writeServiceError(c, h.logger, "emotion summary", err)
		return
	}
	if summary == nil {
		summary = []domain.EmotionSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Create maneja POST /emotions.
func (h *EmotionHandler) Create(c *gin.Context) {
	var req service.EmotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create emotion", err)
		return
	}
	entry, err := h.emotions.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, h.logger, "create emotion", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// Get maneja GET /emotions/:id.
func (h *EmotionHandler) Get(c *gin.Context) {
	entry, err := h.emotions.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, "get emotion", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// Update maneja PUT /emotions/:id.
func (h *EmotionHandler) Update(c *gin.Context) {
	var req service.EmotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update emotion", err)
		return
	}
	entry, err := h.emotions.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, h.logger, "update emotion", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// Delete maneja DELETE /emotions/:id.
func (h *EmotionHandler) Delete(c *gin.Context) {
	if err := h.emotions.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeServiceError(c, h.logger, "delete emotion", err)
		return
	}
	c.Status(http.StatusNoContent)
}
