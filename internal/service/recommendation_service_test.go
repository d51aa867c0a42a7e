package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
)

func newTestRecommendations(repo *mockArticleRepo) *RecommendationService {
	return newRecommendationService(zap.NewNop(), repo, 3, rand.New(rand.NewPCG(1, 2)))
}

func TestRecommendationService_PicksFromTierCategories(t *testing.T) {
	repo := newMockArticleRepo(
		testArticle("s1", domain.ArticleCategoryStress, true, time.Hour),
		testArticle("s2", domain.ArticleCategoryStress, true, 2*time.Hour),
		testArticle("m1", domain.ArticleCategoryMentalHealth, true, 3*time.Hour),
		testArticle("m2", domain.ArticleCategoryMentalHealth, true, 4*time.Hour),
		testArticle("w1", domain.ArticleCategoryWellBeing, true, 0),
		testArticle("draft", domain.ArticleCategoryStress, false, 0),
	)
	svc := newTestRecommendations(repo)

	got, err := svc.ForTier(context.Background(), diagnostic.RiskHigh, 0)
	if err != nil {
		t.Fatalf("for tier: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, a := range got {
		if a.Category != domain.ArticleCategoryStress && a.Category != domain.ArticleCategoryMentalHealth {
			t.Fatalf("unexpected category %q for high tier", a.Category)
		}
		if !a.Published {
			t.Fatalf("draft recommended: %s", a.ID)
		}
		if seen[a.ID] {
			t.Fatalf("duplicate recommendation %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestRecommendationService_FallsBackToLatest(t *testing.T) {
	repo := newMockArticleRepo(
		testArticle("w1", domain.ArticleCategoryWellBeing, true, 5*time.Hour),
		testArticle("s1", domain.ArticleCategoryStress, true, time.Hour),
		testArticle("b1", domain.ArticleCategoryBreathing, true, 2*time.Hour),
	)
	svc := newTestRecommendations(repo)

	got, err := svc.ForTier(context.Background(), diagnostic.RiskLow, 3)
	if err != nil {
		t.Fatalf("for tier: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected sample topped up to 3, got %d", len(got))
	}
	if got[0].ID != "w1" || got[1].ID != "s1" || got[2].ID != "b1" {
		t.Fatalf("expected tier match then latest articles, got %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRecommendationService_EmptyAndErrors(t *testing.T) {
	svc := newTestRecommendations(newMockArticleRepo())
	got, err := svc.ForTier(context.Background(), diagnostic.RiskModerate, 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty recommendations, got %+v %v", got, err)
	}

	failing := newMockArticleRepo()
	failing.listErr = errors.New("db down")
	if _, err := newTestRecommendations(failing).ForTier(context.Background(), diagnostic.RiskModerate, 3); err == nil {
		t.Fatalf("expected repository error")
	}

	var nilSvc *RecommendationService
	if got, err := nilSvc.ForTier(context.Background(), diagnostic.RiskHigh, 3); err != nil || got != nil {
		t.Fatalf("expected nil service to be a no-op")
	}
}

func TestCategoriesForTier(t *testing.T) {
	moderate := CategoriesForTier(diagnostic.RiskModerate)
	if len(moderate) != 2 || moderate[0] != domain.ArticleCategoryStress || moderate[1] != domain.ArticleCategoryBreathing {
		t.Fatalf("unexpected moderate categories: %v", moderate)
	}
	moderate[0] = "mutated"
	if CategoriesForTier(diagnostic.RiskModerate)[0] != domain.ArticleCategoryStress {
		t.Fatalf("expected a copy")
	}
}
