package service

import (
	"context"
	"errors"
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
	ErrReportNotFound        = errors.New("report not found")
	ErrReportTargetNotFound  = errors.New("reported content not found")
	ErrInvalidReport         = errors.New("invalid report")
	ErrDuplicateReport       = errors.New("report already pending")
	ErrReportAlreadyResolved = errors.New("report already resolved")
)

const maxReasonLength = 500

// ReportService gestiona los reportes de moderacion sobre articulos y comentarios.
type ReportService struct {
	logger   *zap.Logger
	reports  repository.ReportRepository
	articles repository.ArticleRepository
	comments repository.CommentRepository
}

func NewReportService(logger *zap.Logger, reports repository.ReportRepository, articles repository.ArticleRepository, comments repository.CommentRepository) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{logger: logger, reports: reports, articles: articles, comments: comments}
}

func (s *ReportService) Report(ctx context.Context, reporterID string, target domain.ReportTarget, targetID, reason string) (domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if !target.Valid() || strings.TrimSpace(targetID) == "" {
		return domain.Report{}, ErrInvalidReport
	}
	if reason == "" || utf8.RuneCountInString(reason) > maxReasonLength {
		return domain.Report{}, ErrInvalidReport
	}
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: target,
		TargetID:   targetID,
		Reason:     reason,
		Status:     domain.ReportPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Report{}, ErrDuplicateReport
		}
		return domain.Report{}, err
	}
	s.logger.Info("content reported",
		zap.String("report_id", report.ID),
		zap.String("target_type", string(target)),
		zap.String("target_id", targetID),
	)
	return report, nil
}

func (s *ReportService) List(ctx context.Context, status domain.ReportStatus, limit int) ([]domain.Report, error) {
	if status == "" {
		status = domain.ReportPending
	}
	if !status.Valid() {
		return nil, ErrInvalidReport
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.reports.ListByStatus(ctx, status, limit)
}

// Resolve cierra un reporte pendiente. ACTIONED borra el comentario o despublica el articulo
// junto con el cambio de estado, de forma atomica.
func (s *ReportService) Resolve(ctx context.Context, id string, status domain.ReportStatus, resolverID string) (domain.Report, error) {
	if status != domain.ReportDismissed && status != domain.ReportActioned {
		return domain.Report{}, ErrInvalidReport
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Report{}, ErrReportNotFound
		}
		return domain.Report{}, err
	}
	if report.Status != domain.ReportPending {
		return domain.Report{}, ErrReportAlreadyResolved
	}

	now := time.Now().UTC()
	if status == domain.ReportActioned {
		err = s.reports.ResolveActioned(ctx, id, resolverID, now)
	} else {
		err = s.reports.Resolve(ctx, id, status, resolverID, now)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Report{}, ErrReportAlreadyResolved
		}
		return domain.Report{}, err
	}
	report.Status = status
	report.ResolvedBy = resolverID
	report.ResolvedAt = &now
	s.logger.Info("report resolved", zap.String("report_id", id), zap.String("status", string(status)))
	return report, nil
}

func (s *ReportService) ensureTarget(ctx context.Context, target domain.ReportTarget, targetID string) error {
	var err error
	switch target {
	case domain.ReportTargetArticle:
		var article domain.Article
		article, err = s.articles.GetByID(ctx, targetID)
		if err == nil && !article.Published {
			err = pgx.ErrNoRows
		}
	case domain.ReportTargetComment:
		_, err = s.comments.GetByID(ctx, targetID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReportTargetNotFound
	}
	return err
}
