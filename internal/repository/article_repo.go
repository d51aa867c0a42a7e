package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// ArticleFilter restringe los listados de articulos.
type ArticleFilter struct {
	Categories    []domain.ArticleCategory
	PublishedOnly bool
	Limit         int
	Offset        int
}

type ArticleRepository interface {
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
	GetByID(ctx context.Context, id string) (domain.Article, error)
	Create(ctx context.Context, article domain.Article) error
	Update(ctx context.Context, article domain.Article) error
	Delete(ctx context.Context, id string) error

	Like(ctx context.Context, articleID, userID string, at time.Time) error
	Unlike(ctx context.Context, articleID, userID string) error
	AddFavorite(ctx context.Context, articleID, userID string, at time.Time) error
	RemoveFavorite(ctx context.Context, articleID, userID string) error
	ListFavorites(ctx context.Context, userID string) ([]domain.Article, error)
}

type PgArticleRepository struct {
	pool *pgxpool.Pool
}

func NewPgArticleRepository(pool *pgxpool.Pool) *PgArticleRepository {
	return &PgArticleRepository{pool: pool}
}

const articleSelect = `
	SELECT a.id, a.title, a.summary, a.content, a.category, a.published,
		COALESCE(a.author_id, ''),
		(SELECT COUNT(*) FROM article_likes l WHERE l.article_id = a.id),
		a.created_at, a.updated_at
	FROM articles a
`

func (r *PgArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error) {
	categories := make([]string, len(filter.Categories))
	for i, c := range filter.Categories {
		categories[i] = string(c)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := articleSelect + `
		WHERE (cardinality($1::text[]) = 0 OR a.category = ANY($1))
		  AND (NOT $2 OR a.published)
		ORDER BY a.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, categories, filter.PublishedOnly, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (r *PgArticleRepository) GetByID(ctx context.Context, id string) (domain.Article, error) {
	return scanArticle(r.pool.QueryRow(ctx, articleSelect+` WHERE a.id = $1`, id))
}

func (r *PgArticleRepository) Create(ctx context.Context, article domain.Article) error {
	const query = `
		INSERT INTO articles (id, title, summary, content, category, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Summary,
		article.Content,
		string(article.Category),
		article.Published,
		article.AuthorID,
		article.CreatedAt,
		article.UpdatedAt,
	)
	return err
}

func (r *PgArticleRepository) Update(ctx context.Context, article domain.Article) error {
	const query = `
		UPDATE articles
		SET title = $2, summary = $3, content = $4, category = $5, published = $6, updated_at = $7
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query,
		article.ID,
		article.Title,
		article.Summary,
		article.Content,
		string(article.Category),
		article.Published,
		article.UpdatedAt,
	)
}

func (r *PgArticleRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM articles WHERE id = $1`, id)
}

func (r *PgArticleRepository) Like(ctx context.Context, articleID, userID string, at time.Time) error {
	const query = `
		INSERT INTO article_likes (article_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, articleID, userID, at)
	return err
}

func (r *PgArticleRepository) Unlike(ctx context.Context, articleID, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM article_likes WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	return err
}

func (r *PgArticleRepository) AddFavorite(ctx context.Context, articleID, userID string, at time.Time) error {
	const query = `
		INSERT INTO article_favorites (article_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, articleID, userID, at)
	return err
}

func (r *PgArticleRepository) RemoveFavorite(ctx context.Context, articleID, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM article_favorites WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	return err
}

func (r *PgArticleRepository) ListFavorites(ctx context.Context, userID string) ([]domain.Article, error) {
	query := articleSelect + `
		JOIN article_favorites f ON f.article_id = a.id
		WHERE f.user_id = $1 AND a.published
		ORDER BY f.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func collectArticles(rows pgx.Rows) ([]domain.Article, error) {
	defer rows.Close()
	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var (
		a        domain.Article
		category string
	)
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Summary,
		&a.Content,
		&category,
		&a.Published,
		&a.AuthorID,
		&a.LikeCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}
	a.Category = domain.ArticleCategory(category)
	return a, nil
}
