package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

const recommendationPoolSize = 100

var tierCategories = map[diagnostic.RiskTier][]domain.ArticleCategory{
	diagnostic.RiskLow:      {domain.ArticleCategoryWellBeing},
	diagnostic.RiskModerate: {domain.ArticleCategoryStress, domain.ArticleCategoryBreathing},
	diagnostic.RiskHigh:     {domain.ArticleCategoryStress, domain.ArticleCategoryMentalHealth},
}

// CategoriesForTier devuelve las categorias de contenido sugeridas para un nivel de riesgo.
func CategoriesForTier(tier diagnostic.RiskTier) []domain.ArticleCategory {
	cats := tierCategories[tier]
	out := make([]domain.ArticleCategory, len(cats))
	copy(out, cats)
	return out
}

// RecommendationService sugiere articulos publicados segun el nivel de riesgo.
type RecommendationService struct {
	logger   *zap.Logger
	articles repository.ArticleRepository
	size     int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRecommendationService(logger *zap.Logger, articles repository.ArticleRepository, size int) *RecommendationService {
	seed := uint64(time.Now().UnixNano())
	return newRecommendationService(logger, articles, size, rand.New(rand.NewPCG(seed, seed>>1|1)))
}

func newRecommendationService(logger *zap.Logger, articles repository.ArticleRepository, size int, rng *rand.Rand) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 3
	}
	return &RecommendationService{logger: logger, articles: articles, size: size, rng: rng}
}

// Size es el numero de articulos que se adjuntan a un diagnostico.
func (s *RecommendationService) Size() int {
	return s.size
}

// ForTier elige n articulos al azar entre las categorias del nivel y completa con los mas recientes.
func (s *RecommendationService) ForTier(ctx context.Context, tier diagnostic.RiskTier, n int) ([]domain.Article, error) {
	if s == nil || s.articles == nil {
		return nil, nil
	}
	if n <= 0 {
		n = s.size
	}

	pool, err := s.articles.List(ctx, repository.ArticleFilter{
		Categories:    tierCategories[tier],
		PublishedOnly: true,
		Limit:         recommendationPoolSize,
	})
	if err != nil {
		return nil, err
	}
	picked := s.sample(pool, n)
	if len(picked) >= n {
		return picked, nil
	}

	latest, err := s.articles.List(ctx, repository.ArticleFilter{PublishedOnly: true, Limit: n + len(picked)})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(picked))
	for _, a := range picked {
		seen[a.ID] = struct{}{}
	}
	for _, a := range latest {
		if len(picked) >= n {
			break
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		picked = append(picked, a)
	}
	return picked, nil
}

func (s *RecommendationService) sample(pool []domain.Article, n int) []domain.Article {
	out := make([]domain.Article, len(pool))
	copy(out, pool)
	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()
	if len(out) > n {
		out = out[:n]
	}
	return out
}
