package domain

import "time"

type ReportTarget string

const (
	ReportTargetArticle ReportTarget = "ARTICLE"
	ReportTargetComment ReportTarget = "COMMENT"
)

func (t ReportTarget) Valid() bool {
	return t == ReportTargetArticle || t == ReportTargetComment
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportDismissed ReportStatus = "DISMISSED"
	ReportActioned  ReportStatus = "ACTIONED"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportDismissed, ReportActioned:
		return true
	}
	return false
}

type Report struct {
	ID         string       `json:"id"`
	ReporterID string       `json:"reporter_id"`
	TargetType ReportTarget `json:"target_type"`
	TargetID   string       `json:"target_id"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	ResolvedBy string       `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
