package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/metrics"
	"cesizen/internal/repository"
)

const catalogCacheKey = "catalog:stress-events"

var ErrStressEventNotFound = errors.New("stress event not found")

type redisCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CatalogService carga el catalogo de eventos de estres y lo mantiene en cache.
type CatalogService struct {
	logger  *zap.Logger
	repo    repository.StressEventRepository
	cache   redisCacheClient
	ttl     time.Duration
	metrics *metrics.Manager
}

// NewCatalogService acepta un cliente Redis nil: en ese caso cada lectura va a Postgres.
func NewCatalogService(logger *zap.Logger, repo repository.StressEventRepository, client *redis.Client, ttl time.Duration, m *metrics.Manager) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	svc := &CatalogService{logger: logger, repo: repo, ttl: ttl, metrics: m}
	if client != nil {
		svc.cache = client
	}
	return svc
}

// Catalog devuelve el catalogo indexado. Cualquier fallo de carga se reporta como ErrCatalogUnavailable.
func (s *CatalogService) Catalog(ctx context.Context) (*diagnostic.Catalog, error) {
	if events, ok := s.readCache(ctx); ok {
		catalog, err := diagnostic.NewCatalog(events)
		if err == nil {
			return catalog, nil
		}
		s.logger.Warn("cached catalog rejected", zap.Error(err))
	}

	if s.repo == nil {
		return nil, fmt.Errorf("%w: repository not configured", diagnostic.ErrCatalogUnavailable)
	}
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", diagnostic.ErrCatalogUnavailable, err)
	}
	catalog, err := diagnostic.NewCatalog(events)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", diagnostic.ErrCatalogUnavailable, err)
	}
	s.writeCache(ctx, catalog.Events())
	return catalog, nil
}

// List devuelve los eventos ordenados por categoria y peso.
func (s *CatalogService) List(ctx context.Context) ([]diagnostic.StressEvent, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Events(), nil
}

func (s *CatalogService) Create(ctx context.Context, event diagnostic.StressEvent) (diagnostic.StressEvent, error) {
	event = normalizeEvent(event)
	if err := diagnostic.ValidateEvent(event); err != nil {
		return diagnostic.StressEvent{}, err
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return diagnostic.StressEvent{}, err
	}
	s.Invalidate(ctx)
	s.logger.Info("stress event created", zap.Int("event_id", created.ID))
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, event diagnostic.StressEvent) (diagnostic.StressEvent, error) {
	event = normalizeEvent(event)
	if err := diagnostic.ValidateEvent(event); err != nil {
		return diagnostic.StressEvent{}, err
	}
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return diagnostic.StressEvent{}, ErrStressEventNotFound
		}
		return diagnostic.StressEvent{}, err
	}
	s.Invalidate(ctx)
	return event, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStressEventNotFound
		}
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Seed inserta o actualiza el catalogo por defecto.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	events := diagnostic.DefaultEvents()
	if err := s.repo.UpsertMany(ctx, events); err != nil {
		return 0, err
	}
	s.Invalidate(ctx)
	return len(events), nil
}

// SeedIfEmpty carga el catalogo por defecto solo si la tabla esta vacia.
// Nunca pisa un catalogo ya editado por un administrador.
func (s *CatalogService) SeedIfEmpty(ctx context.Context) (int, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) > 0 {
		return 0, nil
	}
	return s.Seed(ctx)
}

// Invalidate borra la copia en cache; la siguiente lectura recarga desde Postgres.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) readCache(ctx context.Context) ([]diagnostic.StressEvent, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		s.metrics.CatalogCacheLookup(false)
		return nil, false
	}
	var events []diagnostic.StressEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		s.logger.Warn("catalog cache entry corrupt", zap.Error(err))
		s.metrics.CatalogCacheLookup(false)
		return nil, false
	}
	s.metrics.CatalogCacheLookup(true)
	return events, true
}

func (s *CatalogService) writeCache(ctx context.Context, events []diagnostic.StressEvent) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, catalogCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

func normalizeEvent(event diagnostic.StressEvent) diagnostic.StressEvent {
	event.Label = strings.TrimSpace(event.Label)
	event.Category = diagnostic.Category(strings.TrimSpace(string(event.Category)))
	return event
}
