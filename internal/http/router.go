package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/metrics"
	"cesizen/internal/service"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Users       *UserHandler
	Admin       *AdminHandler
	Diagnostics *DiagnosticHandler
	Articles    *ArticleHandler
	Emotions    *EmotionHandler
	Reports     *ReportHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, m *metrics.Manager, jwtSvc *service.JWTService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), metricsMiddleware(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	requireAuth := JWTAuthMiddleware(jwtSvc)
	optionalAuth := OptionalJWTAuthMiddleware(jwtSvc)
	requireAdmin := RequireRole(domain.RoleAdmin)

	api := r.Group("/", jsonContentTypeMiddleware())

	auth := api.Group("/auth")
	auth.POST("/register", h.Users.Register)
	auth.POST("/login", h.Users.Login)
	auth.POST("/refresh", h.Users.RefreshToken)
	auth.POST("/logout", h.Users.Logout)
	auth.POST("/otp/request", h.Users.RequestOTP)
	auth.POST("/otp/verify", h.Users.VerifyOTP)
	auth.POST("/password/forgot", h.Users.ForgotPassword)
	auth.POST("/password/reset", h.Users.ResetPassword)

	me := api.Group("/me", requireAuth)
	me.GET("", h.Users.Me)
	me.PATCH("", h.Users.UpdateMe)
	me.DELETE("", h.Users.DeleteMe)
	me.PUT("/password", h.Users.ChangePassword)
	me.GET("/favorites", h.Users.MyFavorites)

	diag := api.Group("/diagnostic")
	diag.GET("/events", h.Diagnostics.ListEvents)
	diag.POST("", optionalAuth, h.Diagnostics.Submit)
	diag.GET("/history", requireAuth, h.Diagnostics.History)
	diag.GET("/history/:id", requireAuth, h.Diagnostics.Get)
	diag.DELETE("/history/:id", requireAuth, h.Diagnostics.Delete)

	articles := api.Group("/articles")
	articles.GET("", optionalAuth, h.Articles.List)
	articles.GET("/:id", optionalAuth, h.Articles.Get)
	articles.GET("/:id/comments", h.Articles.ListComments)
	articles.POST("/:id/comments", requireAuth, h.Articles.AddComment)
	articles.PUT("/:id/like", requireAuth, h.Articles.Like)
	articles.DELETE("/:id/like", requireAuth, h.Articles.Unlike)
	articles.PUT("/:id/favorite", requireAuth, h.Articles.AddFavorite)
	articles.DELETE("/:id/favorite", requireAuth, h.Articles.RemoveFavorite)
	api.DELETE("/comments/:id", requireAuth, h.Articles.DeleteComment)

	api.POST("/reports", requireAuth, h.Reports.Create)

	emotions := api.Group("/emotions", requireAuth)
	emotions.GET("", h.Emotions.List)
	emotions.POST("", h.Emotions.Create)
	emotions.GET("/summary", h.Emotions.Summary)
	emotions.GET("/:id", h.Emotions.Get)
	emotions.PUT("/:id", h.Emotions.Update)
	emotions.DELETE("/:id", h.Emotions.Delete)

	admin := api.Group("/admin", requireAuth, requireAdmin, RequireActiveUser(h.Admin.userServ))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id/active", h.Admin.SetActive)
	admin.PATCH("/users/:id/role", h.Admin.SetRole)
	admin.POST("/stress-events", h.Diagnostics.CreateEvent)
	admin.PUT("/stress-events/:id", h.Diagnostics.UpdateEvent)
	admin.DELETE("/stress-events/:id", h.Diagnostics.DeleteEvent)
	admin.POST("/articles", h.Articles.Create)
	admin.PUT("/articles/:id", h.Articles.Update)
	admin.DELETE("/articles/:id", h.Articles.Delete)
	admin.GET("/reports", h.Reports.List)
	admin.POST("/reports/:id/resolve", h.Reports.Resolve)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware usa la ruta registrada (no la URL) para acotar la cardinalidad.
func metricsMiddleware(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
