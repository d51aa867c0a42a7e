package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// EmotionRepository persiste el diario de emociones.
type EmotionRepository interface {
	Create(ctx context.Context, entry domain.EmotionEntry) error
	GetByID(ctx context.Context, id string) (domain.EmotionEntry, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionEntry, error)
	Update(ctx context.Context, entry domain.EmotionEntry) error
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionSummary, error)
}

type PgEmotionRepository struct {
	pool *pgxpool.Pool
}

func NewPgEmotionRepository(pool *pgxpool.Pool) *PgEmotionRepository {
	return &PgEmotionRepository{pool: pool}
}

func (r *PgEmotionRepository) Create(ctx context.Context, entry domain.EmotionEntry) error {
	const query = `
		INSERT INTO emotion_entries (id, user_id, emotion, intensity, note, entry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Emotion),
		entry.Intensity,
		entry.Note,
		entry.EntryDate,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return err
}

func (r *PgEmotionRepository) GetByID(ctx context.Context, id string) (domain.EmotionEntry, error) {
	const query = `
		SELECT id, user_id, emotion, intensity, note, entry_date, created_at, updated_at
		FROM emotion_entries
		WHERE id = $1
	`
	return scanEmotion(r.pool.QueryRow(ctx, query, id))
}

// ListByUser devuelve las entradas con entry_date dentro de [from, to].
func (r *PgEmotionRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionEntry, error) {
	const query = `
		SELECT id, user_id, emotion, intensity, note, entry_date, created_at, updated_at
		FROM emotion_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.EmotionEntry
	for rows.Next() {
		e, err := scanEmotion(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PgEmotionRepository) Update(ctx context.Context, entry domain.EmotionEntry) error {
	const query = `
		UPDATE emotion_entries
		SET emotion = $3, intensity = $4, note = $5, entry_date = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`
	return execOne(ctx, r.pool, query,
		entry.ID,
		entry.UserID,
		string(entry.Emotion),
		entry.Intensity,
		entry.Note,
		entry.EntryDate,
		entry.UpdatedAt,
	)
}

func (r *PgEmotionRepository) Delete(ctx context.Context, userID, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM emotion_entries WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PgEmotionRepository) Summary(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionSummary, error) {
	const query = `
		SELECT emotion, COUNT(*), AVG(intensity)::float8
		FROM emotion_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		GROUP BY emotion
		ORDER BY COUNT(*) DESC, emotion
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmotionSummary
	for rows.Next() {
		var (
			s       domain.EmotionSummary
			emotion string
		)
		if err := rows.Scan(&emotion, &s.Count, &s.AverageIntensity); err != nil {
			return nil, err
		}
		s.Emotion = domain.Emotion(emotion)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanEmotion(row pgx.Row) (domain.EmotionEntry, error) {
	var (
		e       domain.EmotionEntry
		emotion string
	)
	err := row.Scan(&e.ID, &e.UserID, &emotion, &e.Intensity, &e.Note, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.EmotionEntry{}, err
	}
	e.Emotion = domain.Emotion(emotion)
	return e, nil
}
