package domain

import (
	"time"

	"cesizen/internal/diagnostic"
)

// DiagnosticRecord es un resultado persistido para el historial del usuario.
type DiagnosticRecord struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	TotalScore int                 `json:"total_score"`
	RiskTier   diagnostic.RiskTier `json:"risk_tier"`
	EventIDs   []int               `json:"event_ids"`
	CreatedAt  time.Time           `json:"created_at"`
}
