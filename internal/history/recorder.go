// Package history keeps the metrics log used for week-over-week velocity and
// runs the scheduled snapshot and digest jobs.
package history

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/sprint"
	"github.com/zulandar/tickora/internal/store"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Week is the look-back window of Report.
const Week = 7 * 24 * time.Hour

// Source is the read side of the entity store used by the recorder.
type Source interface {
	sprint.Source
	ListSprints(filters ...store.Filter[models.Sprint]) iter.Seq[models.Sprint]
}

// Recorder persists metrics snapshots.
type Recorder struct {
	db     *gorm.DB
	src    Source
	clock  func() time.Time
	logger *zap.Logger
}

// NewRecorder returns a Recorder writing to db. clock and logger may be nil.
func NewRecorder(db *gorm.DB, src Source, clock func() time.Time, logger *zap.Logger) *Recorder {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, src: src, clock: clock, logger: logger}
}

// Record aggregates a sprint and stores the result as a snapshot taken now.
func (r *Recorder) Record(ctx context.Context, sprintID string) (models.MetricsSnapshot, error) {
	m, err := sprint.Aggregate(r.src, sprintID)
	if err != nil {
		return models.MetricsSnapshot{}, err
	}
	snap := models.MetricsSnapshot{
		SprintID:             m.SprintID,
		TakenAt:              r.clock(),
		TotalItems:           m.TotalItems,
		DoneItems:            m.DoneItems,
		CompletionPct:        m.CompletionPct,
		BlockedCount:         m.BlockedCount,
		CriticalBlockedCount: m.CriticalBlockedCount,
	}
	if err := r.db.WithContext(ctx).Create(&snap).Error; err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("history: record %s: %w", sprintID, err)
	}
	return snap, nil
}

// RecordActive snapshots every active sprint and returns how many were
// recorded. Failures do not stop the remaining sprints.
func (r *Recorder) RecordActive(ctx context.Context) (int, error) {
	var (
		n    int
		errs error
	)
	for sp := range r.src.ListSprints(store.SprintsWithStatus(models.SprintActive)) {
		if err := ctx.Err(); err != nil {
			return n, multierr.Append(errs, err)
		}
		snap, err := r.Record(ctx, sp.ID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n++
		r.logger.Debug("recorded sprint metrics",
			zap.String("sprint", sp.ID),
			zap.Int("completion_pct", snap.CompletionPct),
			zap.Int("blocked", snap.BlockedCount),
		)
	}
	return n, errs
}

// Previous returns the latest snapshot of a sprint taken at or before at,
// or nil when there is none.
func (r *Recorder) Previous(ctx context.Context, sprintID string, at time.Time) (*models.MetricsSnapshot, error) {
	var snap models.MetricsSnapshot
	err := r.db.WithContext(ctx).
		Where("sprint_id = ? AND taken_at <= ?", sprintID, at).
		Order("taken_at DESC, id DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: previous %s: %w", sprintID, err)
	}
	return &snap, nil
}

// History returns every snapshot of a sprint, oldest first.
func (r *Recorder) History(ctx context.Context, sprintID string) ([]models.MetricsSnapshot, error) {
	var snaps []models.MetricsSnapshot
	err := r.db.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("taken_at, id").
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("history: list %s: %w", sprintID, err)
	}
	return snaps, nil
}

// Report aggregates a sprint and attaches the delta against the latest
// snapshot at least a week older than now.
func (r *Recorder) Report(ctx context.Context, sprintID string, now time.Time) (sprint.Report, error) {
	// Resolve the sprint first so an unknown id is NotFound, not "no history".
	if _, err := r.src.GetSprint(sprintID); err != nil {
		return sprint.Report{}, err
	}
	prev, err := r.Previous(ctx, sprintID, now.Add(-Week))
	if err != nil {
		return sprint.Report{}, err
	}
	var pm *sprint.Metrics
	if prev != nil {
		m := toMetrics(*prev)
		pm = &m
	}
	return sprint.AggregateWithPrevious(r.src, sprintID, pm)
}

func toMetrics(s models.MetricsSnapshot) sprint.Metrics {
	return sprint.Metrics{
		SprintID:             s.SprintID,
		TotalItems:           s.TotalItems,
		DoneItems:            s.DoneItems,
		CompletionPct:        s.CompletionPct,
		BlockedCount:         s.BlockedCount,
		CriticalBlockedCount: s.CriticalBlockedCount,
	}
}
