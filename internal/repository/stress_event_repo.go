package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/diagnostic"
)

// StressEventRepository persiste el catalogo de eventos del diagnostico.
type StressEventRepository interface {
	List(ctx context.Context) ([]diagnostic.StressEvent, error)
	Create(ctx context.Context, event diagnostic.StressEvent) (diagnostic.StressEvent, error)
	Update(ctx context.Context, event diagnostic.StressEvent) error
	Delete(ctx context.Context, id int) error
	UpsertMany(ctx context.Context, events []diagnostic.StressEvent) error
}

type PgStressEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgStressEventRepository(pool *pgxpool.Pool) *PgStressEventRepository {
	return &PgStressEventRepository{pool: pool}
}

func (r *PgStressEventRepository) List(ctx context.Context) ([]diagnostic.StressEvent, error) {
	const query = `
		SELECT id, label, weight, category
		FROM stress_events
		ORDER BY category, weight DESC, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []diagnostic.StressEvent
	for rows.Next() {
		var (
			ev       diagnostic.StressEvent
			category string
		)
		if err := rows.Scan(&ev.ID, &ev.Label, &ev.Weight, &category); err != nil {
			return nil, err
		}
		ev.Category = diagnostic.Category(category)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PgStressEventRepository) Create(ctx context.Context, event diagnostic.StressEvent) (diagnostic.StressEvent, error) {
	const query = `
		INSERT INTO stress_events (label, weight, category)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, event.Label, event.Weight, string(event.Category)).Scan(&event.ID)
	return event, err
}

func (r *PgStressEventRepository) Update(ctx context.Context, event diagnostic.StressEvent) error {
	const query = `UPDATE stress_events SET label = $2, weight = $3, category = $4 WHERE id = $1`
	return execOne(ctx, r.pool, query, event.ID, event.Label, event.Weight, string(event.Category))
}

func (r *PgStressEventRepository) Delete(ctx context.Context, id int) error {
	return execOne(ctx, r.pool, `DELETE FROM stress_events WHERE id = $1`, id)
}

// UpsertMany inserta o actualiza eventos con id explicito y ajusta la secuencia.
func (r *PgStressEventRepository) UpsertMany(ctx context.Context, events []diagnostic.StressEvent) error {
	const upsert = `
		INSERT INTO stress_events (id, label, weight, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			weight = EXCLUDED.weight,
			category = EXCLUDED.category
	`
	const resetSequence = `
		SELECT setval(pg_get_serial_sequence('stress_events', 'id'), COALESCE(MAX(id), 1))
		FROM stress_events
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(upsert, ev.ID, ev.Label, ev.Weight, string(ev.Category))
	}
	batch.Queue(resetSequence)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
