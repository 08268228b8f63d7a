package models

import "time"

// StandupResponse is one user's daily standup answers for a project.
type StandupResponse struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"size:32;not null;index" json:"user_id"`
	ProjectID   string    `gorm:"size:32;not null;index:idx_project_submitted" json:"project_id"`
	Yesterday   string    `gorm:"type:text" json:"yesterday"`
	Today       string    `gorm:"type:text" json:"today"`
	Blockers    string    `gorm:"type:text" json:"blockers"`
	SubmittedAt time.Time `gorm:"not null;index:idx_project_submitted" json:"submitted_at"`
}
