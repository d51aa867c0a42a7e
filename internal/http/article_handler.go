package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// ArticleHandler expone los contenidos de informacion, sus comentarios e interacciones.
type ArticleHandler struct {
	logger   *zap.Logger
	articles *service.ArticleService
}

func NewArticleHandler(logger *zap.Logger, articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{logger: logger, articles: articles}
}

func isAdmin(c *gin.Context) bool {
	claims, ok := GetAuthClaims(c)
	return ok && claims.IsAdmin()
}

// List maneja GET /articles?category=&limit=&offset=. Los admins ven tambien borradores.
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.articles.List(
		c.Request.Context(),
		domain.ArticleCategory(c.Query("category")),
		isAdmin(c),
		queryInt(c, "limit", 20),
		queryInt(c, "offset", 0),
	)
	if err != nil {
		writeServiceError(c, h.logger, "list articles", err)
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// Get maneja GET /articles/:id.
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articles.Get(c.Request.Context(), c.Param("id"), isAdmin(c))
	if err != nil {
		writeServiceError(c, h.logger, "get article", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Create maneja POST /admin/articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req service.ArticleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create article", err)
		return
	}
	article, err := h.articles.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, h.logger, "create article", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// Update maneja PUT /admin/articles/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	var req service.ArticleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update article", err)
		return
	}
	article, err := h.articles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, h.logger, "update article", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Delete maneja DELETE /admin/articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, h.logger, "delete article", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListComments maneja GET /articles/:id/comments.
func (h *ArticleHandler) ListComments(c *gin.Context) {
	comments, err := h.articles.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, "list comments", err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// AddComment maneja POST /articles/:id/comments.
func (h *ArticleHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "comment", err)
		return
	}
	comment, err := h.articles.AddComment(c.Request.Context(), c.Param("id"), currentUserID(c), req.Content)
	if err != nil {
		writeServiceError(c, h.logger, "add comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment maneja DELETE /comments/:id.
func (h *ArticleHandler) DeleteComment(c *gin.Context) {
	if err := h.articles.DeleteComment(c.Request.Context(), c.Param("id"), currentUserID(c), isAdmin(c)); err != nil {
		writeServiceError(c, h.logger, "delete comment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like maneja PUT /articles/:id/like.
func (h *ArticleHandler) Like(c *gin.Context) {
	h.toggle(c, "like", h.articles.Like)
}

// Unlike maneja DELETE /articles/:id/like.
func (h *ArticleHandler) Unlike(c *gin.Context) {
	h.toggle(c, "unlike", h.articles.Unlike)
}

// AddFavorite maneja PUT /articles/:id/favorite.
func (h *ArticleHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, "add favorite", h.articles.AddFavorite)
}

// RemoveFavorite maneja DELETE /articles/:id/favorite.
func (h *ArticleHandler) RemoveFavorite(c *gin.Context) {
	h.toggle(c, "remove favorite", h.articles.RemoveFavorite)
}

type articleToggle func(ctx context.Context, articleID, userID string) error

func (h *ArticleHandler) toggle(c *gin.Context, op string, fn articleToggle) {
	if err := fn(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		writeServiceError(c, h.logger, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}
