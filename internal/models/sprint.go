package models

import "time"

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	ID        string       `gorm:"primaryKey;size:32" json:"id"`
	ProjectID string       `gorm:"size:32;not null;index" json:"project_id"`
	Name      string       `gorm:"size:128;not null" json:"name"`
	Goal      string       `gorm:"type:text" json:"goal,omitempty"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    SprintStatus `gorm:"size:16;default:planned;index" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime:false" json:"updated_at"`
}
