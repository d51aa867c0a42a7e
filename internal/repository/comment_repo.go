package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) error
	GetByID(ctx context.Context, id string) (domain.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

func (r *PgCommentRepository) Create(ctx context.Context, comment domain.Comment) error {
	const query = `
		INSERT INTO comments (id, article_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.ArticleID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	return err
}

func (r *PgCommentRepository) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	const query = `
		SELECT id, article_id, user_id, content, created_at
		FROM comments
		WHERE id = $1
	`
	var c domain.Comment
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt)
	return c, err
}

func (r *PgCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	const query = `
		SELECT id, article_id, user_id, content, created_at
		FROM comments
		WHERE article_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *PgCommentRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM comments WHERE id = $1`, id)
}
