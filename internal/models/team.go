package models

import "time"

// Team groups users. Members is derived from each user's TeamID and is not
// stored as a column.
type Team struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Members   []string  `gorm:"-" json:"members"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
