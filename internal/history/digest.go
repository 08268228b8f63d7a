package history

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/notify"
	"github.com/zulandar/tickora/internal/sprint"
	"github.com/zulandar/tickora/internal/standup"
	"github.com/zulandar/tickora/internal/store"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DigestJob posts a standup digest for every active sprint.
type DigestJob struct {
	Source    Source
	Processor *standup.Processor
	Log       *standup.Log // nil posts metrics without standup summaries
	Notifier  notify.Notifier
	Clock     func() time.Time
	Logger    *zap.Logger
}

// Run builds and sends one digest per active sprint. It returns the number of
// digests sent.
func (j *DigestJob) Run(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock()
	}
	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		sent int
		errs error
	)
	for sp := range j.Source.ListSprints(store.SprintsWithStatus(models.SprintActive)) {
		msg, err := j.build(ctx, sp, now)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := j.Notifier.Send(ctx, msg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("history: send digest %s: %w", sp.ID, err))
			continue
		}
		sent++
		logger.Info("digest sent", zap.String("sprint", sp.ID))
	}
	return sent, errs
}

func (j *DigestJob) build(ctx context.Context, sp models.Sprint, now time.Time) (notify.Message, error) {
	var responses []standup.Response
	if j.Log != nil {
		var err error
		responses, err = j.Log.Since(ctx, sp.ProjectID, now.Add(-24*time.Hour))
		if err != nil {
			return notify.Message{}, err
		}
	}
	text, err := j.Processor.Digest(ctx, sp.ID, responses)
	if err != nil {
		return notify.Message{}, err
	}
	m, err := sprint.Aggregate(j.Source, sp.ID)
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{
		Title: "Standup digest: " + sp.Name,
		Text:  text,
		Color: healthColor(m),
		Fields: []notify.Field{
			{Name: "Done", Value: fmt.Sprintf("%d/%d", m.DoneItems, m.TotalItems), Short: true},
			{Name: "Completion", Value: fmt.Sprintf("%d%%", m.CompletionPct), Short: true},
			{Name: "Blocked", Value: fmt.Sprintf("%d", m.BlockedCount), Short: true},
			{Name: "Days left", Value: fmt.Sprintf("%d", m.DaysRemaining(now)), Short: true},
		},
	}, nil
}

func healthColor(m sprint.Metrics) string {
	switch {
	case m.CriticalBlockedCount > 0:
		return notify.ColorDanger
	case m.BlockedCount > 0:
		return notify.ColorWarning
	default:
		return notify.ColorGood
	}
}
