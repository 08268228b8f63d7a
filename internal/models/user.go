package models

import "time"

// User is a person who can own work items and belong to one team.
type User struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Role      Role      `gorm:"size:16;default:team_member" json:"role"`
	Avatar    string    `gorm:"size:512" json:"avatar,omitempty"`
	TeamID    *string   `gorm:"size:32;index" json:"team_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
