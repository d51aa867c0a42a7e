package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, report domain.Report) error
	GetByID(ctx context.Context, id string) (domain.Report, error)
	ListByStatus(ctx context.Context, status domain.ReportStatus, limit int) ([]domain.Report, error)
	Resolve(ctx context.Context, id string, status domain.ReportStatus, resolverID string, at time.Time) error
	ResolveActioned(ctx context.Context, id, resolverID string, at time.Time) error
}

type PgReportRepository struct {
	pool *pgxpool.Pool
}

func NewPgReportRepository(pool *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{pool: pool}
}

// Create falla con una violacion UNIQUE si ya existe un reporte pendiente del mismo usuario.
func (r *PgReportRepository) Create(ctx context.Context, report domain.Report) error {
	const query = `
		INSERT INTO reports (id, reporter_id, target_type, target_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.ReporterID,
		string(report.TargetType),
		report.TargetID,
		report.Reason,
		string(report.Status),
		report.CreatedAt,
	)
	return err
}

func (r *PgReportRepository) GetByID(ctx context.Context, id string) (domain.Report, error) {
	const query = `
		SELECT id, reporter_id, target_type, target_id, reason, status, COALESCE(resolved_by, ''), resolved_at, created_at
		FROM reports
		WHERE id = $1
	`
	return scanReport(r.pool.QueryRow(ctx, query, id))
}

func (r *PgReportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus, limit int) ([]domain.Report, error) {
	const query = `
		SELECT id, reporter_id, target_type, target_id, reason, status, COALESCE(resolved_by, ''), resolved_at, created_at
		FROM reports
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *PgReportRepository) Resolve(ctx context.Context, id string, status domain.ReportStatus, resolverID string, at time.Time) error {
	const query = `
		UPDATE reports
		SET status = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1 AND status = 'PENDING'
	`
	return execOne(ctx, r.pool, query, id, string(status), resolverID, at)
}

// ResolveActioned cierra el reporte como ACTIONED y retira el contenido en la misma transaccion.
// Devuelve pgx.ErrNoRows si el reporte ya no estaba pendiente.
func (r *PgReportRepository) ResolveActioned(ctx context.Context, id, resolverID string, at time.Time) error {
	const resolve = `
		UPDATE reports
		SET status = 'ACTIONED', resolved_by = $2, resolved_at = $3
		WHERE id = $1 AND status = 'PENDING'
		RETURNING target_type, target_id
	`
	const deleteComment = `DELETE FROM comments WHERE id = $1`
	const unpublishArticle = `UPDATE articles SET published = FALSE, updated_at = $2 WHERE id = $1`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var targetType, targetID string
	if err := tx.QueryRow(ctx, resolve, id, resolverID, at).Scan(&targetType, &targetID); err != nil {
		return err
	}
	switch domain.ReportTarget(targetType) {
	case domain.ReportTargetComment:
		_, err = tx.Exec(ctx, deleteComment, targetID)
	case domain.ReportTargetArticle:
		_, err = tx.Exec(ctx, unpublishArticle, targetID, at)
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanReport(row pgx.Row) (domain.Report, error) {
	var (
		rep        domain.Report
		targetType string
		status     string
	)
	err := row.Scan(
		&rep.ID,
		&rep.ReporterID,
		&targetType,
		&rep.TargetID,
		&rep.Reason,
		&status,
		&rep.ResolvedBy,
		&rep.ResolvedAt,
		&rep.CreatedAt,
	)
	if err != nil {
		return domain.Report{}, err
	}
	rep.TargetType = domain.ReportTarget(targetType)
	rep.Status = domain.ReportStatus(status)
	return rep, nil
}
