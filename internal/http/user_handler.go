package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// UserHandler mantiene dependencias para endpoints de cuenta y autenticacion.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
	articles *service.ArticleService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService, articles *service.ArticleService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
		articles: articles,
	}
}

// Register maneja POST /auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "register", err)
		return
	}

	user, err := h.userServ.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		writeServiceError(c, h.logger, "register", err)
		return
	}

	tokens, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
}

// Login maneja POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, "login", err)
		return
	}

	tokens, err := h.jwtServ.GeneratePair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

// RefreshToken maneja POST /auth/refresh. Recarga el usuario para reflejar rol y estado actuales.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "refresh", err)
		return
	}
	ctx := c.Request.Context()

	claims, err := h.jwtServ.ParseRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	user, err := h.userServ.GetProfile(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrAccountDisabled.Error()})
		return
	}
	tokens, err := h.jwtServ.Rotate(ctx, claims, user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "logout", err)
		return
	}
	_ = h.jwtServ.RevokeRefresh(c.Request.Context(), req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// RequestOTP maneja POST /auth/otp/request.
func (h *UserHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "otp", err)
		return
	}

	if _, err := h.userServ.RequestOTP(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, h.logger, "request otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "otp verify", err)
		return
	}

	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(c, h.logger, "verify otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ForgotPassword maneja POST /auth/password/forgot. Responde igual exista o no la cuenta.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "forgot password", err)
		return
	}
	if err := h.userServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, h.logger, "forgot password", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "reset_requested"})
}

// ResetPassword maneja POST /auth/password/reset.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "reset password", err)
		return
	}
	ctx := c.Request.Context()
	if err := h.userServ.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(c, h.logger, "reset password", err)
		return
	}
	if user, err := h.userServ.GetProfileByEmail(ctx, req.Email); err == nil {
		h.revokeSessions(c, user.ID)
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userServ.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeServiceError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe maneja PATCH /me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name" binding:"max=80"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update profile", err)
		return
	}
	user, err := h.userServ.UpdateProfile(c.Request.Context(), currentUserID(c), req.DisplayName)
	if err != nil {
		writeServiceError(c, h.logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword maneja PUT /me/password y cierra las demas sesiones.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "change password", err)
		return
	}
	userID := currentUserID(c)
	if err := h.userServ.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(c, h.logger, "change password", err)
		return
	}
	h.revokeSessions(c, userID)
	c.Status(http.StatusNoContent)
}

// DeleteMe maneja DELETE /me.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID := currentUserID(c)
	if err := h.userServ.DeleteAccount(c.Request.Context(), userID); err != nil {
		writeServiceError(c, h.logger, "delete account", err)
		return
	}
	h.revokeSessions(c, userID)
	c.Status(http.StatusNoContent)
}

// MyFavorites maneja GET /me/favorites.
func (h *UserHandler) MyFavorites(c *gin.Context) {
	articles, err := h.articles.Favorites(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeServiceError(c, h.logger, "list favorites", err)
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (h *UserHandler) revokeSessions(c *gin.Context, userID string) {
	if err := h.jwtServ.RevokeUser(c.Request.Context(), userID); err != nil {
		h.logger.Warn("revoke sessions failed", zap.String("user_id", userID), zap.Error(err))
	}
}
