package models

import "time"

// MetricsSnapshot is a point-in-time record of a sprint's health, used to
// compute week-over-week velocity.
type MetricsSnapshot struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SprintID             string    `gorm:"size:32;not null;index:idx_sprint_taken" json:"sprint_id"`
	TakenAt              time.Time `gorm:"not null;index:idx_sprint_taken" json:"taken_at"`
	TotalItems           int       `json:"total_items"`
	DoneItems            int       `json:"done_items"`
	CompletionPct        int       `json:"completion_pct"`
	BlockedCount         int       `json:"blocked_count"`
	CriticalBlockedCount int       `json:"critical_blocked_count"`
}
