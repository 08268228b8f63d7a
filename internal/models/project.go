package models

import "time"

// Project is a body of work owned by a team.
type Project struct {
	ID        string      `gorm:"primaryKey;size:32" json:"id"`
	Name      string      `gorm:"size:128;not null" json:"name"`
	Type      ProjectType `gorm:"size:16;default:scrum" json:"type"`
	TeamID    string      `gorm:"size:32;not null;index" json:"team_id"`
	CreatedAt time.Time   `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime:false" json:"updated_at"`
}
