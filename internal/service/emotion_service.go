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
	ErrEmotionEntryNotFound = errors.New("emotion entry not found")
	ErrInvalidEmotionEntry  = errors.New("invalid emotion entry")
	ErrInvalidPeriod        = errors.New("invalid period")
)

const (
	maxNoteLength        = 1000
	defaultJournalPeriod = 30 * 24 * time.Hour
)

type EmotionInput struct {
	Emotion   domain.Emotion `json:"emotion"`
	Intensity int            `json:"intensity"`
	Note      string         `json:"note"`
	EntryDate time.Time      `json:"entry_date"`
}

// EmotionService gestiona el diario de emociones de cada usuario.
type EmotionService struct {
	logger  *zap.Logger
	entries repository.EmotionRepository
	now     func() time.Time
}

func NewEmotionService(logger *zap.Logger, entries repository.EmotionRepository) *EmotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmotionService{
		logger:  logger,
		entries: entries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *EmotionService) Create(ctx context.Context, userID string, input EmotionInput) (domain.EmotionEntry, error) {
	input, err := s.validate(input)
	if err != nil {
		return domain.EmotionEntry{}, err
	}
	now := s.now()
	entry := domain.EmotionEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Emotion:   input.Emotion,
		Intensity: input.Intensity,
		Note:      input.Note,
		EntryDate: input.EntryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return domain.EmotionEntry{}, err
	}
	return entry, nil
}

func (s *EmotionService) Get(ctx context.Context, userID, id string) (domain.EmotionEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EmotionEntry{}, ErrEmotionEntryNotFound
		}
		return domain.EmotionEntry{}, err
	}
	if entry.UserID != userID {
		return domain.EmotionEntry{}, ErrEmotionEntryNotFound
	}
	return entry, nil
}

// List devuelve las entradas del periodo. Sin limites explicitos se usan los ultimos 30 dias.
func (s *EmotionService) List(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionEntry, error) {
	from, to, err := s.period(from, to)
	if err != nil {
		return nil, err
	}
	return s.entries.ListByUser(ctx, userID, from, to)
}

func (s *EmotionService) Update(ctx context.Context, userID, id string, input EmotionInput) (domain.EmotionEntry, error) {
	input, err := s.validate(input)
	if err != nil {
		return domain.EmotionEntry{}, err
	}
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.EmotionEntry{}, err
	}
	entry.Emotion = input.Emotion
	entry.Intensity = input.Intensity
	entry.Note = input.Note
	entry.EntryDate = input.EntryDate
	entry.UpdatedAt = s.now()
	if err := s.entries.Update(ctx, entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EmotionEntry{}, ErrEmotionEntryNotFound
		}
		return domain.EmotionEntry{}, err
	}
	return entry, nil
}

func (s *EmotionService) Delete(ctx context.Context, userID, id string) error {
	err := s.entries.Delete(ctx, userID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmotionEntryNotFound
	}
	return err
}

func (s *EmotionService) Summary(ctx context.Context, userID string, from, to time.Time) ([]domain.EmotionSummary, error) {
	from, to, err := s.period(from, to)
	if err != nil {
		return nil, err
	}
	return s.entries.Summary(ctx, userID, from, to)
}

func (s *EmotionService) validate(input EmotionInput) (EmotionInput, error) {
	input.Emotion = domain.Emotion(strings.ToUpper(strings.TrimSpace(string(input.Emotion))))
	input.Note = strings.TrimSpace(input.Note)
	if !input.Emotion.Valid() {
		return input, fmt.Errorf("%w: unknown emotion %q", ErrInvalidEmotionEntry, input.Emotion)
	}
	if input.Intensity < domain.MinIntensity || input.Intensity > domain.MaxIntensity {
		return input, fmt.Errorf("%w: intensity must be between %d and %d", ErrInvalidEmotionEntry, domain.MinIntensity, domain.MaxIntensity)
	}
	if utf8.RuneCountInString(input.Note) > maxNoteLength {
		return input, fmt.Errorf("%w: note too long", ErrInvalidEmotionEntry)
	}
	now := s.now()
	if input.EntryDate.IsZero() {
		input.EntryDate = now
	}
	if input.EntryDate.After(now.Add(24 * time.Hour)) {
		return input, fmt.Errorf("%w: entry date in the future", ErrInvalidEmotionEntry)
	}
	input.EntryDate = input.EntryDate.UTC()
	return input, nil
}

func (s *EmotionService) period(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultJournalPeriod)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return from.UTC(), to.UTC(), nil
}
