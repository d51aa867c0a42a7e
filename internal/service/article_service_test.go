package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

type mockArticleRepo struct {
	articles  map[string]domain.Article
	likes     map[string]map[string]bool
	favorites map[string][]string
	listErr   error
}

func newMockArticleRepo(articles ...domain.Article) *mockArticleRepo {
	m := &mockArticleRepo{
		articles:  make(map[string]domain.Article),
		likes:     make(map[string]map[string]bool),
		favorites: make(map[string][]string),
	}
	for _, a := range articles {
		m.articles[a.ID] = a
	}
	return m
}

func (m *mockArticleRepo) List(_ context.Context, filter repository.ArticleFilter) ([]domain.Article, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Article
	for _, a := range m.articles {
		if filter.PublishedOnly && !a.Published {
			continue
		}
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, a.Category) {
			continue
		}
		a.LikeCount = len(m.likes[a.ID])
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func containsCategory(cats []domain.ArticleCategory, c domain.ArticleCategory) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}

func (m *mockArticleRepo) GetByID(_ context.Context, id string) (domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, pgx.ErrNoRows
	}
	a.LikeCount = len(m.likes[id])
	return a, nil
}

func (m *mockArticleRepo) Create(_ context.Context, article domain.Article) error {
	m.articles[article.ID] = article
	return nil
}

func (m *mockArticleRepo) Update(_ context.Context, article domain.Article) error {
	if _, ok := m.articles[article.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.articles[article.ID] = article
	return nil
}

func (m *mockArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.articles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.articles, id)
	return nil
}

func (m *mockArticleRepo) Like(_ context.Context, articleID, userID string, _ time.Time) error {
	if m.likes[articleID] == nil {
		m.likes[articleID] = make(map[string]bool)
	}
	m.likes[articleID][userID] = true
	return nil
}

func (m *mockArticleRepo) Unlike(_ context.Context, articleID, userID string) error {
	delete(m.likes[articleID], userID)
	return nil
}

func (m *mockArticleRepo) AddFavorite(_ context.Context, articleID, userID string, _ time.Time) error {
	for _, id := range m.favorites[userID] {
		if id == articleID {
			return nil
		}
	}
	m.favorites[userID] = append(m.favorites[userID], articleID)
	return nil
}

func (m *mockArticleRepo) RemoveFavorite(_ context.Context, articleID, userID string) error {
	kept := m.favorites[userID][:0]
	for _, id := range m.favorites[userID] {
		if id != articleID {
			kept = append(kept, id)
		}
	}
	m.favorites[userID] = kept
	return nil
}

func (m *mockArticleRepo) ListFavorites(_ context.Context, userID string) ([]domain.Article, error) {
	var out []domain.Article
	for _, id := range m.favorites[userID] {
		out = append(out, m.articles[id])
	}
	return out, nil
}

type mockCommentRepo struct {
	comments map[string]domain.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]domain.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, comment domain.Comment) error {
	m.comments[comment.ID] = comment
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (domain.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return domain.Comment{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCommentRepo) ListByArticle(_ context.Context, articleID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.comments, id)
	return nil
}

func testArticle(id string, cat domain.ArticleCategory, published bool, age time.Duration) domain.Article {
	return domain.Article{
		ID:        id,
		Title:     "Article " + id,
		Content:   "Contenu",
		Category:  cat,
		Published: published,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(-age),
	}
}

func TestArticleService_ListAndGet(t *testing.T) {
	repo := newMockArticleRepo(
		testArticle("a1", domain.ArticleCategoryStress, true, time.Hour),
		testArticle("a2", domain.ArticleCategoryWellBeing, true, 2*time.Hour),
		testArticle("draft", domain.ArticleCategoryStress, false, 0),
	)
	svc := NewArticleService(zap.NewNop(), repo, newMockCommentRepo())
	ctx := context.Background()

	public, err := svc.List(ctx, "", false, 0, 0)
	if err != nil || len(public) != 2 || public[0].ID != "a1" {
		t.Fatalf("unexpected public list: %+v %v", public, err)
	}
	all, _ := svc.List(ctx, "", true, 0, 0)
	if len(all) != 3 {
		t.Fatalf("expected drafts for admins, got %d", len(all))
	}
	stress, _ := svc.List(ctx, domain.ArticleCategoryStress, false, 0, 0)
	if len(stress) != 1 || stress[0].ID != "a1" {
		t.Fatalf("unexpected category filter result: %+v", stress)
	}
	if _, err := svc.List(ctx, "yoga", false, 0, 0); !errors.Is(err, ErrInvalidArticle) {
		t.Fatalf("expected ErrInvalidArticle for unknown category, got %v", err)
	}

	if _, err := svc.Get(ctx, "draft", false); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected drafts hidden from public, got %v", err)
	}
	if _, err := svc.Get(ctx, "draft", true); err != nil {
		t.Fatalf("expected admin to read draft, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing", true); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_CreateUpdateDelete(t *testing.T) {
	repo := newMockArticleRepo()
	svc := NewArticleService(zap.NewNop(), repo, newMockCommentRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "admin", ArticleInput{Title: " ", Content: "x", Category: domain.ArticleCategoryStress}); !errors.Is(err, ErrInvalidArticle) {
		t.Fatalf("expected ErrInvalidArticle for empty title, got %v", err)
	}
	if _, err := svc.Create(ctx, "admin", ArticleInput{Title: "x", Content: "x", Category: "yoga"}); !errors.Is(err, ErrInvalidArticle) {
		t.Fatalf("expected ErrInvalidArticle for bad category, got %v", err)
	}

	article, err := svc.Create(ctx, "admin", ArticleInput{
		Title:    " Cohérence cardiaque ",
		Content:  "Respirez 5 secondes...",
		Category: domain.ArticleCategoryBreathing,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if article.Title != "Cohérence cardiaque" || article.AuthorID != "admin" || article.Published {
		t.Fatalf("unexpected article: %+v", article)
	}

	updated, err := svc.Update(ctx, article.ID, ArticleInput{
		Title:     "Cohérence cardiaque 365",
		Content:   "Trois fois par jour",
		Category:  domain.ArticleCategoryBreathing,
		Published: true,
	})
	if err != nil || !updated.Published || updated.Title != "Cohérence cardiaque 365" {
		t.Fatalf("unexpected update: %+v %v", updated, err)
	}
	if _, err := svc.Update(ctx, "missing", ArticleInput{Title: "x", Content: "x", Category: domain.ArticleCategoryStress}); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, article.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, article.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_Comments(t *testing.T) {
	repo := newMockArticleRepo(
		testArticle("a1", domain.ArticleCategoryStress, true, 0),
		testArticle("draft", domain.ArticleCategoryStress, false, 0),
	)
	comments := newMockCommentRepo()
	svc := NewArticleService(zap.NewNop(), repo, comments)
	ctx := context.Background()

	if _, err := svc.AddComment(ctx, "a1", "u1", "   "); !errors.Is(err, ErrInvalidComment) {
		t.Fatalf("expected ErrInvalidComment, got %v", err)
	}
	if _, err := svc.AddComment(ctx, "draft", "u1", "hello"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected comments on drafts rejected, got %v", err)
	}

	c, err := svc.AddComment(ctx, "a1", "u1", " Merci ! ")
	if err != nil || c.Content != "Merci !" {
		t.Fatalf("unexpected comment: %+v %v", c, err)
	}
	list, _ := svc.ListComments(ctx, "a1")
	if len(list) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(list))
	}

	if err := svc.DeleteComment(ctx, c.ID, "u2", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other users, got %v", err)
	}
	if err := svc.DeleteComment(ctx, c.ID, "admin", true); err != nil {
		t.Fatalf("expected admin delete, got %v", err)
	}
	if err := svc.DeleteComment(ctx, c.ID, "u1", false); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestArticleService_LikesAndFavoritesAreIdempotent(t *testing.T) {
	repo := newMockArticleRepo(testArticle("a1", domain.ArticleCategoryStress, true, 0))
	svc := NewArticleService(zap.NewNop(), repo, newMockCommentRepo())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.Like(ctx, "a1", "u1"); err != nil {
			t.Fatalf("like: %v", err)
		}
		if err := svc.AddFavorite(ctx, "a1", "u1"); err != nil {
			t.Fatalf("favorite: %v", err)
		}
	}
	article, _ := svc.Get(ctx, "a1", false)
	if article.LikeCount != 1 {
		t.Fatalf("expected 1 like, got %d", article.LikeCount)
	}
	favs, _ := svc.Favorites(ctx, "u1")
	if len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favs))
	}

	if err := svc.Like(ctx, "missing", "u1"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}

	_ = svc.Unlike(ctx, "a1", "u1")
	_ = svc.RemoveFavorite(ctx, "a1", "u1")
	article, _ = svc.Get(ctx, "a1", false)
	favs, _ = svc.Favorites(ctx, "u1")
	if article.LikeCount != 0 || len(favs) != 0 {
		t.Fatalf("expected like and favorite removed, got %d/%d", article.LikeCount, len(favs))
	}
}
