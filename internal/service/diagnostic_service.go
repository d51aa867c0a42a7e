package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/domain"
	"cesizen/internal/metrics"
	"cesizen/internal/repository"
)

var ErrDiagnosticNotFound = errors.New("diagnostic not found")

// Submission es lo que devuelve un diagnostico recien puntuado.
type Submission struct {
	Result          diagnostic.Result `json:"result"`
	RecordID        string            `json:"record_id,omitempty"`
	Recommendations []domain.Article  `json:"recommendations"`
}

type catalogSource interface {
	Catalog(ctx context.Context) (*diagnostic.Catalog, error)
}

type DiagnosticService struct {
	logger          *zap.Logger
	engine          *diagnostic.Engine
	catalog         catalogSource
	records         repository.DiagnosticRepository
	recommendations *RecommendationService
	metrics         *metrics.Manager
}

func NewDiagnosticService(
	logger *zap.Logger,
	engine *diagnostic.Engine,
	catalog catalogSource,
	records repository.DiagnosticRepository,
	recommendations *RecommendationService,
	m *metrics.Manager,
) *DiagnosticService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = diagnostic.NewEngine()
	}
	return &DiagnosticService{
		logger:          logger,
		engine:          engine,
		catalog:         catalog,
		records:         records,
		recommendations: recommendations,
		metrics:         m,
	}
}

// Submit puntua la seleccion. Con userID vacio el resultado no se guarda.
func (s *DiagnosticService) Submit(ctx context.Context, userID string, selectedIDs []int) (Submission, error) {
	if len(selectedIDs) == 0 {
		s.metrics.DiagnosticRejected()
		return Submission{}, diagnostic.ErrInvalidSubmission
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		s.logger.Error("load stress catalog", zap.Error(err))
		return Submission{}, err
	}

	result, err := s.engine.Score(selectedIDs, catalog)
	if err != nil {
		s.metrics.DiagnosticRejected()
		return Submission{}, err
	}
	s.metrics.DiagnosticScored(result.RiskTier)

	sub := Submission{Result: result, Recommendations: []domain.Article{}}
	if userID != "" && s.records != nil {
		id, err := s.records.Save(ctx, userID, result)
		if err != nil {
			return Submission{}, err
		}
		sub.RecordID = id
		s.logger.Info("diagnostic saved",
			zap.String("user_id", userID),
			zap.String("diagnostic_id", id),
			zap.String("tier", string(result.RiskTier)),
		)
	}

	recs, err := s.recommendations.ForTier(ctx, result.RiskTier, 0)
	if err != nil {
		// El diagnostico ya esta puntuado; las sugerencias son opcionales.
		s.logger.Warn("recommendations unavailable", zap.Error(err))
	} else if len(recs) > 0 {
		sub.Recommendations = recs
	}
	return sub, nil
}

func (s *DiagnosticService) History(ctx context.Context, userID string, limit int) ([]domain.DiagnosticRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.records.ListByUser(ctx, userID, limit)
}

// Get devuelve un diagnostico del historial. Los ajenos se reportan como no encontrados.
func (s *DiagnosticService) Get(ctx context.Context, userID, id string) (domain.DiagnosticRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DiagnosticRecord{}, ErrDiagnosticNotFound
		}
		return domain.DiagnosticRecord{}, err
	}
	if record.UserID != userID {
		return domain.DiagnosticRecord{}, ErrDiagnosticNotFound
	}
	return record, nil
}

func (s *DiagnosticService) Delete(ctx context.Context, userID, id string) error {
	err := s.records.Delete(ctx, userID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDiagnosticNotFound
	}
	return err
}
