package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
)

// DiagnosticRepository guarda resultados de diagnostico atribuibles a un usuario.
type DiagnosticRepository interface {
	Save(ctx context.Context, userID string, result diagnostic.Result) (string, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.DiagnosticRecord, error)
	GetByID(ctx context.Context, id string) (domain.DiagnosticRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

type PgDiagnosticRepository struct {
	pool *pgxpool.Pool
}

func NewPgDiagnosticRepository(pool *pgxpool.Pool) *PgDiagnosticRepository {
	return &PgDiagnosticRepository{pool: pool}
}

// Save persiste el resultado con su propio CreatedAt.
func (r *PgDiagnosticRepository) Save(ctx context.Context, userID string, result diagnostic.Result) (string, error) {
	const query = `
		INSERT INTO diagnostics (id, user_id, total_score, risk_tier, event_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	id := uuid.NewString()
	eventIDs := result.EventIDs()
	ids := make([]int32, len(eventIDs))
	for i, v := range eventIDs {
		ids[i] = int32(v)
	}
	_, err := r.pool.Exec(ctx, query, id, userID, result.TotalScore, string(result.RiskTier), ids, result.CreatedAt.UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgDiagnosticRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.DiagnosticRecord, error) {
	const query = `
		SELECT id, user_id, total_score, risk_tier, event_ids, created_at
		FROM diagnostics
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DiagnosticRecord
	for rows.Next() {
		rec, err := scanDiagnostic(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PgDiagnosticRepository) GetByID(ctx context.Context, id string) (domain.DiagnosticRecord, error) {
	const query = `
		SELECT id, user_id, total_score, risk_tier, event_ids, created_at
		FROM diagnostics
		WHERE id = $1
	`
	return scanDiagnostic(r.pool.QueryRow(ctx, query, id))
}

func (r *PgDiagnosticRepository) Delete(ctx context.Context, userID, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM diagnostics WHERE id = $1 AND user_id = $2`, id, userID)
}

func scanDiagnostic(row pgx.Row) (domain.DiagnosticRecord, error) {
	var (
		rec  domain.DiagnosticRecord
		tier string
		ids  []int32
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.TotalScore, &tier, &ids, &rec.CreatedAt); err != nil {
		return domain.DiagnosticRecord{}, err
	}
	rec.RiskTier = diagnostic.RiskTier(tier)
	rec.EventIDs = make([]int, len(ids))
	for i, v := range ids {
		rec.EventIDs[i] = int(v)
	}
	return rec, nil
}
