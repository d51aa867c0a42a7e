package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidArticle  = errors.New("invalid article")
	ErrInvalidComment  = errors.New("invalid comment")
	ErrForbidden       = errors.New("forbidden")
)

const maxCommentLength = 2000

// ArticleInput son los campos editables de un articulo.
type ArticleInput struct {
	Title     string                 `json:"title"`
	Summary   string                 `json:"summary"`
	Content   string                 `json:"content"`
	Category  domain.ArticleCategory `json:"category"`
	Published bool                   `json:"published"`
}

type ArticleService struct {
	logger   *zap.Logger
	articles repository.ArticleRepository
	comments repository.CommentRepository
}

func NewArticleService(logger *zap.Logger, articles repository.ArticleRepository, comments repository.CommentRepository) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleService{logger: logger, articles: articles, comments: comments}
}

// List devuelve articulos, mas recientes primero. Solo los admins ven borradores.
func (s *ArticleService) List(ctx context.Context, category domain.ArticleCategory, includeDrafts bool, limit, offset int) ([]domain.Article, error) {
	filter := repository.ArticleFilter{PublishedOnly: !includeDrafts, Limit: limit, Offset: offset}
	if category != "" {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArticle, category)
		}
		filter.Categories = []domain.ArticleCategory{category}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.articles.List(ctx, filter)
}

func (s *ArticleService) Get(ctx context.Context, id string, includeDrafts bool) (domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	if !article.Published && !includeDrafts {
		return domain.Article{}, ErrArticleNotFound
	}
	return article, nil
}

func (s *ArticleService) Create(ctx context.Context, authorID string, input ArticleInput) (domain.Article, error) {
	input, err := validateArticle(input)
	if err != nil {
		return domain.Article{}, err
	}
	now := time.Now().UTC()
	article := domain.Article{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Summary:   input.Summary,
		Content:   input.Content,
		Category:  input.Category,
		Published: input.Published,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return domain.Article{}, err
	}
	s.logger.Info("article created", zap.String("article_id", article.ID), zap.String("category", string(article.Category)))
	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, id string, input ArticleInput) (domain.Article, error) {
	input, err := validateArticle(input)
	if err != nil {
		return domain.Article{}, err
	}
	article, err := s.Get(ctx, id, true)
	if err != nil {
		return domain.Article{}, err
	}
	article.Title = input.Title
	article.Summary = input.Summary
	article.Content = input.Content
	article.Category = input.Category
	article.Published = input.Published
	article.UpdatedAt = time.Now().UTC()
	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	err := s.articles.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrArticleNotFound
	}
	return err
}

func (s *ArticleService) AddComment(ctx context.Context, articleID, userID, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return domain.Comment{}, ErrInvalidComment
	}
	if _, err := s.Get(ctx, articleID, false); err != nil {
		return domain.Comment{}, err
	}
	comment := domain.Comment{
		ID:        uuid.NewString(),
		ArticleID: articleID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

func (s *ArticleService) ListComments(ctx context.Context, articleID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, articleID, false); err != nil {
		return nil, err
	}
	return s.comments.ListByArticle(ctx, articleID)
}

// DeleteComment solo lo puede hacer el autor del comentario o un admin.
func (s *ArticleService) DeleteComment(ctx context.Context, commentID, actorID string, actorIsAdmin bool) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != actorID && !actorIsAdmin {
		return ErrForbidden
	}
	return s.removeComment(ctx, commentID)
}

func (s *ArticleService) removeComment(ctx context.Context, commentID string) error {
	err := s.comments.Delete(ctx, commentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	return err
}

func (s *ArticleService) Like(ctx context.Context, articleID, userID string) error {
	if _, err := s.Get(ctx, articleID, false); err != nil {
		return err
	}
	return s.articles.Like(ctx, articleID, userID, time.Now().UTC())
}

func (s *ArticleService) Unlike(ctx context.Context, articleID, userID string) error {
	return s.articles.Unlike(ctx, articleID, userID)
}

func (s *ArticleService) AddFavorite(ctx context.Context, articleID, userID string) error {
	if _, err := s.Get(ctx, articleID, false); err != nil {
		return err
	}
	return s.articles.AddFavorite(ctx, articleID, userID, time.Now().UTC())
}

func (s *ArticleService) RemoveFavorite(ctx context.Context, articleID, userID string) error {
	return s.articles.RemoveFavorite(ctx, articleID, userID)
}

func (s *ArticleService) Favorites(ctx context.Context, userID string) ([]domain.Article, error) {
	return s.articles.ListFavorites(ctx, userID)
}

func validateArticle(input ArticleInput) (ArticleInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Summary = strings.TrimSpace(input.Summary)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" {
		return input, fmt.Errorf("%w: title is required", ErrInvalidArticle)
	}
	if input.Content == "" {
		return input, fmt.Errorf("%w: content is required", ErrInvalidArticle)
	}
	if !input.Category.Valid() {
		return input, fmt.Errorf("%w: unknown category %q", ErrInvalidArticle, input.Category)
	}
	return input, nil
}
