package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cesizen/internal/config"
	"cesizen/internal/db"
	"cesizen/internal/diagnostic"
	"cesizen/internal/email"
	apihttp "cesizen/internal/http"
	"cesizen/internal/metrics"
	"cesizen/internal/repository"
	"cesizen/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	var m *metrics.Manager
	if cfg.MetricsEnabled {
		m = metrics.NewManager()
	}

	userRepo := repository.NewPgUserRepository(pool)
	eventRepo := repository.NewPgStressEventRepository(pool)
	diagnosticRepo := repository.NewPgDiagnosticRepository(pool)
	articleRepo := repository.NewPgArticleRepository(pool)
	commentRepo := repository.NewPgCommentRepository(pool)
	emotionRepo := repository.NewPgEmotionRepository(pool)
	reportRepo := repository.NewPgReportRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		otpAttempts service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory fallbacks", zap.Error(err))
			_ = client.Close()
		} else {
			redisClient = client
			otpLimiter = service.NewRedisOTPRateLimiter(client, logger, 10*time.Minute, 3)
			otpAttempts = service.NewRedisOTPRateLimiter(client, logger, 10*time.Minute, 5)
			tokenStore = service.NewRedisRefreshTokenStore(client)
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	jwtSvc := service.NewJWTServiceWithStore(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL(), tokenStore)

	engine := diagnostic.NewEngine(diagnostic.WithStrictIDs(cfg.DiagnosticStrictIDs))
	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter).WithOTPAttemptLimiter(otpAttempts)
	articleSvc := service.NewArticleService(logger, articleRepo, commentRepo)
	catalogSvc := service.NewCatalogService(logger, eventRepo, redisClient, cfg.CatalogCacheTTL(), m)
	if cfg.SeedCatalogOnStart {
		n, err := catalogSvc.SeedIfEmpty(ctx)
		if err != nil {
			logger.Fatal("seed stress catalog", zap.Error(err))
		}
		if n > 0 {
			logger.Info("stress catalog seeded", zap.Int("events", n))
		}
	}
	recoSvc := service.NewRecommendationService(logger, articleRepo, cfg.RecommendationSize)
	diagnosticSvc := service.NewDiagnosticService(logger, engine, catalogSvc, diagnosticRepo, recoSvc, m)
	emotionSvc := service.NewEmotionService(logger, emotionRepo)
	reportSvc := service.NewReportService(logger, reportRepo, articleRepo, commentRepo)

	router := apihttp.NewRouter(logger, m, jwtSvc, apihttp.Handlers{
		Users:       apihttp.NewUserHandler(logger, userSvc, jwtSvc, articleSvc),
		Admin:       apihttp.NewAdminHandler(logger, userSvc, jwtSvc),
		Diagnostics: apihttp.NewDiagnosticHandler(logger, catalogSvc, diagnosticSvc),
		Articles:    apihttp.NewArticleHandler(logger, articleSvc),
		Emotions:    apihttp.NewEmotionHandler(logger, emotionSvc),
		Reports:     apihttp.NewReportHandler(logger, reportSvc),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Bool("strict_ids", engine.Strict()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
