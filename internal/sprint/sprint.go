// Package sprint computes sprint health metrics from the entity store.
package sprint

import (
	"iter"
	"math"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

// Source is the read side of the entity store used by the aggregator.
type Source interface {
	GetSprint(id string) (models.Sprint, error)
	ListWorkItems(filters ...store.Filter[models.WorkItem]) iter.Seq[models.WorkItem]
}

// Metrics summarizes the items of one sprint.
type Metrics struct {
	SprintID             string                `json:"sprint_id"`
	TotalItems           int                   `json:"total_items"`
	DoneItems            int                   `json:"done_items"`
	CompletionPct        int                   `json:"completion_pct"`
	BlockedCount         int                   `json:"blocked_count"`
	CriticalBlockedCount int                   `json:"critical_blocked_count"`
	StatusBlocked        int                   `json:"status_blocked"`
	DependencyBlocked    int                   `json:"dependency_blocked"`
	ByStatus             map[models.Status]int `json:"by_status"`
	EndDate              time.Time             `json:"end_date"`
}

// Delta is the change from a previous period's metrics.
type Delta struct {
	CompletionPct int `json:"completion_pct"`
	DoneItems     int `json:"done_items"`
}

// Report pairs current metrics with the delta against a previous period,
// when one is known.
type Report struct {
	Metrics
	Delta *Delta `json:"delta,omitempty"`
}

// Aggregate computes the metrics of a sprint.
func Aggregate(src Source, sprintID string) (Metrics, error) {
	sp, err := src.GetSprint(sprintID)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{
		SprintID: sp.ID,
		EndDate:  sp.EndDate,
		ByStatus: make(map[models.Status]int, len(models.AllStatuses)),
	}
	for _, st := range models.AllStatuses {
		m.ByStatus[st] = 0
	}
	for w := range src.ListWorkItems(store.ItemsInSprint(sprintID)) {
		m.TotalItems++
		m.ByStatus[w.Status]++
		if w.Status == models.StatusDone {
			m.DoneItems++
		}
		if w.Status == models.StatusBlocked {
			m.StatusBlocked++
		}
		if len(w.BlockerIDs) > 0 {
			m.DependencyBlocked++
		}
		if w.IsBlocked() {
			m.BlockedCount++
			if w.Priority == models.PriorityCritical {
				m.CriticalBlockedCount++
			}
		}
	}
	m.CompletionPct = CompletionPct(m.DoneItems, m.TotalItems)
	return m, nil
}

// CompletionPct returns round(100*done/total) with halves rounded up, and 0
// when total is 0.
func CompletionPct(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(done)/float64(total) + 0.5))
}

// DaysRemaining returns the whole days from now until the sprint's end
// date, rounded up and never negative.
func (m Metrics) DaysRemaining(now time.Time) int {
	if m.EndDate.IsZero() || !m.EndDate.After(now) {
		return 0
	}
	return int(math.Ceil(m.EndDate.Sub(now).Hours() / 24))
}

// Velocity compares current metrics with a previous period.
func Velocity(current, previous Metrics) Delta {
	return Delta{
		CompletionPct: current.CompletionPct - previous.CompletionPct,
		DoneItems:     current.DoneItems - previous.DoneItems,
	}
}

// AggregateWithPrevious aggregates a sprint and, when prev is non-nil,
// attaches the velocity delta against it.
func AggregateWithPrevious(src Source, sprintID string, prev *Metrics) (Report, error) {
	m, err := Aggregate(src, sprintID)
	if err != nil {
		return Report{}, err
	}
	r := Report{Metrics: m}
	if prev != nil {
		d := Velocity(m, *prev)
		r.Delta = &d
	}
	return r, nil
}
