package standup

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"gorm.io/gorm"
)

// Log persists standup responses.
type Log struct {
	db *gorm.DB
}

// NewLog returns a Log backed by db. The standup_responses table must exist.
func NewLog(db *gorm.DB) *Log {
	return &Log{db: db}
}

// Save stores r.
func (l *Log) Save(ctx context.Context, r Response) error {
	row := r.record()
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("standup: save response: %w", err)
	}
	return nil
}

// Since returns the responses for a project submitted at or after since,
// oldest first.
func (l *Log) Since(ctx context.Context, projectID string, since time.Time) ([]Response, error) {
	var rows []models.StandupResponse
	err := l.db.WithContext(ctx).
		Where("project_id = ? AND submitted_at >= ?", projectID, since).
		Order("submitted_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("standup: list responses: %w", err)
	}
	out := make([]Response, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRecord(row))
	}
	return out, nil
}
