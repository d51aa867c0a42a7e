package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// AdminHandler agrupa la gestion de cuentas reservada a administradores.
type AdminHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

func NewAdminHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *AdminHandler {
	return &AdminHandler{logger: logger, userServ: userServ, jwtServ: jwtServ}
}

// ListUsers maneja GET /admin/users?limit=&offset=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.ListUsers(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		writeServiceError(c, h.logger, "list users", err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetActive maneja PATCH /admin/users/:id/active. Desactivar cierra sus sesiones.
func (h *AdminHandler) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "set active", err)
		return
	}
	userID := c.Param("id")
	if userID == currentUserID(c) && !*req.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate own account"})
		return
	}
	if err := h.userServ.SetActive(c.Request.Context(), userID, *req.Active); err != nil {
		writeServiceError(c, h.logger, "set active", err)
		return
	}
	if !*req.Active {
		if err := h.jwtServ.RevokeUser(c.Request.Context(), userID); err != nil {
			h.logger.Warn("revoke sessions failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	h.logger.Info("user active flag changed", zap.String("user_id", userID), zap.Bool("active", *req.Active))
	c.Status(http.StatusNoContent)
}

// SetRole maneja PATCH /admin/users/:id/role.
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req struct {
		Role domain.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "set role", err)
		return
	}
	userID := c.Param("id")
	if err := h.userServ.SetRole(c.Request.Context(), userID, req.Role); err != nil {
		writeServiceError(c, h.logger, "set role", err)
		return
	}
	h.logger.Info("user role changed", zap.String("user_id", userID), zap.String("role", string(req.Role)))
	c.Status(http.StatusNoContent)
}
