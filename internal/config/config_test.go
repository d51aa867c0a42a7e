package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cesizen")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.DiagnosticStrictIDs {
		t.Fatalf("expected lenient diagnostic ids by default")
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("unexpected access ttl %v", cfg.AccessTTL())
	}
	if cfg.CatalogCacheTTL() != 5*time.Minute {
		t.Fatalf("unexpected catalog ttl %v", cfg.CatalogCacheTTL())
	}
	if cfg.RecommendationSize != 3 || !cfg.MigrateOnStart || !cfg.SeedCatalogOnStart {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cesizen")
	t.Setenv("DIAGNOSTIC_STRICT_IDS", "true")
	t.Setenv("JWT_REFRESH_TTL_MINUTES", "60")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.DiagnosticStrictIDs {
		t.Fatalf("expected strict ids")
	}
	if cfg.RefreshTTL() != time.Hour {
		t.Fatalf("unexpected refresh ttl %v", cfg.RefreshTTL())
	}
	if cfg.RedisDB != 2 {
		t.Fatalf("expected redis db 2, got %d", cfg.RedisDB)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}
