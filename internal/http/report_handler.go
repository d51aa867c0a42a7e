package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

type ReportHandler struct {
	logger  *zap.Logger
	reports *service.ReportService
}

func NewReportHandler(logger *zap.Logger, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{logger: logger, reports: reports}
}

// Create maneja POST /reports.
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		TargetType domain.ReportTarget `json:"target_type" binding:"required"`
		TargetID   string              `json:"target_id" binding:"required"`
		Reason     string              `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "report", err)
		return
	}
	report, err := h.reports.Report(c.Request.Context(), currentUserID(c), req.TargetType, req.TargetID, req.Reason)
	if err != nil {
		writeServiceError(c, h.logger, "create report", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// List maneja GET /admin/reports?status=&limit=.
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context(), domain.ReportStatus(c.Query("status")), queryInt(c, "limit", 50))
	if err != nil {
		writeServiceError(c, h.logger, "list reports", err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Resolve maneja POST /admin/reports/:id/resolve.
func (h *ReportHandler) Resolve(c *gin.Context) {
	var req struct {
		Status domain.ReportStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "resolve report", err)
		return
	}
	report, err := h.reports.Resolve(c.Request.Context(), c.Param("id"), req.Status, currentUserID(c))
	if err != nil {
		writeServiceError(c, h.logger, "resolve report", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
