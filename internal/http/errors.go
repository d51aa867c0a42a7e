package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/service"
)

type errorMapping struct {
	err    error
	status int
}

// Orden relevante: el primer match gana.
var serviceErrors = []errorMapping{
	{diagnostic.ErrInvalidSubmission, http.StatusBadRequest},
	{diagnostic.ErrUnknownEvent, http.StatusBadRequest},
	{diagnostic.ErrInvalidEvent, http.StatusBadRequest},
	{service.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrOTPNotRequested, http.StatusBadRequest},
	{service.ErrOTPExpired, http.StatusBadRequest},
	{service.ErrOTPInvalid, http.StatusBadRequest},
	{service.ErrInvalidArticle, http.StatusBadRequest},
	{service.ErrInvalidComment, http.StatusBadRequest},
	{service.ErrInvalidEmotionEntry, http.StatusBadRequest},
	{service.ErrInvalidPeriod, http.StatusBadRequest},
	{service.ErrInvalidReport, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrAccountDisabled, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrStressEventNotFound, http.StatusNotFound},
	{service.ErrDiagnosticNotFound, http.StatusNotFound},
	{service.ErrArticleNotFound, http.StatusNotFound},
	{service.ErrCommentNotFound, http.StatusNotFound},
	{service.ErrEmotionEntryNotFound, http.StatusNotFound},
	{service.ErrReportNotFound, http.StatusNotFound},
	{service.ErrReportTargetNotFound, http.StatusNotFound},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrDuplicateReport, http.StatusConflict},
	{service.ErrReportAlreadyResolved, http.StatusConflict},
	{service.ErrRateLimited, http.StatusTooManyRequests},
}

// writeServiceError traduce errores de servicio a respuestas {"error": "..."}.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": err.Error()})
			return
		}
	}
	switch {
	case errors.Is(err, service.ErrEmailSendFailure):
		logger.Warn(op+" failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
	case errors.Is(err, diagnostic.ErrCatalogUnavailable):
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": diagnostic.ErrCatalogUnavailable.Error()})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// queryInt lee un entero de la query string; valores ausentes o invalidos devuelven def.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
