package models

import "time"

// WorkItem is the unit of trackable work in Tickora.
type WorkItem struct {
	ID          string       `gorm:"primaryKey;size:32" json:"id"`
	ProjectID   string       `gorm:"size:32;not null;index" json:"project_id"`
	SprintID    *string      `gorm:"size:32;index" json:"sprint_id,omitempty"`
	Type        WorkItemType `gorm:"size:16;default:task" json:"type"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      Status       `gorm:"size:16;default:todo;index" json:"status"`
	Priority    Priority     `gorm:"size:16;default:medium" json:"priority"`
	OwnerID     *string      `gorm:"size:32;index" json:"owner_id,omitempty"`
	ParentID    *string      `gorm:"size:32;index" json:"parent_id,omitempty"`
	BlockerIDs  []string     `gorm:"-" json:"blocker_ids"`
	// Timestamps are issued by the store, never by GORM.
	CreatedAt   time.Time    `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// IsBlocked reports whether the item is blocked either by declaration or by
// an outstanding blocker reference.
func (w WorkItem) IsBlocked() bool {
	return w.Status == StatusBlocked || len(w.BlockerIDs) > 0
}

// WorkItemBlocker is one edge of the blocker relation: WorkItemID is blocked
// by BlockedBy.
type WorkItemBlocker struct {
	WorkItemID string `gorm:"primaryKey;size:32"`
	BlockedBy  string `gorm:"primaryKey;size:32;index"`
}
