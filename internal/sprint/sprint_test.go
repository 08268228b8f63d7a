package sprint

import (
	"testing"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func setupSprint(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Options{})
	if _, err := s.CreateTeam(store.TeamInput{ID: "t1", Name: "T"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateProject(store.ProjectInput{ID: "p1", Name: "P", TeamID: "t1"}); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.CreateSprint(store.SprintInput{ID: "s1", ProjectID: "p1", Name: "S1", StartDate: start, EndDate: start.AddDate(0, 0, 13)}); err != nil {
		t.Fatal(err)
	}
	return s
}

func addItem(t *testing.T, s *store.Store, in store.WorkItemInput) {
	t.Helper()
	in.ProjectID = "p1"
	if in.Title == "" {
		in.Title = "item"
	}
	if _, err := s.CreateWorkItem(in); err != nil {
		t.Fatal(err)
	}
}

func TestAggregate_CompletionRounding(t *testing.T) {
	s := setupSprint(t)
	addItem(t, s, store.WorkItemInput{SprintID: "s1", Status: models.StatusDone})
	addItem(t, s, store.WorkItemInput{SprintID: "s1", Status: models.StatusDone})
	addItem(t, s, store.WorkItemInput{SprintID: "s1", Status: models.StatusInProgress})
	// Outside the sprint.
	addItem(t, s, store.WorkItemInput{Status: models.StatusDone})

	m, err := Aggregate(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalItems != 3 || m.DoneItems != 2 {
		t.Errorf("total/done = %d/%d, want 3/2", m.TotalItems, m.DoneItems)
	}
	if m.CompletionPct != 67 {
		t.Errorf("CompletionPct = %d, want 67", m.CompletionPct)
	}
	if m.ByStatus[models.StatusInProgress] != 1 || m.ByStatus[models.StatusBlocked] != 0 {
		t.Errorf("ByStatus = %v", m.ByStatus)
	}
}

func TestAggregate_EmptySprint(t *testing.T) {
	s := setupSprint(t)
	m, err := Aggregate(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalItems != 0 || m.CompletionPct != 0 {
		t.Errorf("empty sprint = %+v, want zero completion", m)
	}
}

func TestAggregate_NotFound(t *testing.T) {
	s := setupSprint(t)
	if _, err := Aggregate(s, "nope"); !store.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAggregate_BlockedUnion(t *testing.T) {
	s := setupSprint(t)
	addItem(t, s, store.WorkItemInput{ID: "dep", SprintID: "s1"})
	// Blocked by status only.
	addItem(t, s, store.WorkItemInput{ID: "a", SprintID: "s1", Status: models.StatusBlocked, Priority: models.PriorityCritical})
	// Blocked by dependency only.
	addItem(t, s, store.WorkItemInput{ID: "b", SprintID: "s1", BlockerIDs: []string{"dep"}, Priority: models.PriorityCritical})
	// Both; counted once.
	addItem(t, s, store.WorkItemInput{ID: "c", SprintID: "s1", Status: models.StatusBlocked, BlockerIDs: []string{"dep"}})
	// Critical but not blocked.
	addItem(t, s, store.WorkItemInput{ID: "d", SprintID: "s1", Priority: models.PriorityCritical})

	m, err := Aggregate(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if m.BlockedCount != 3 {
		t.Errorf("BlockedCount = %d, want 3", m.BlockedCount)
	}
	if m.CriticalBlockedCount != 2 {
		t.Errorf("CriticalBlockedCount = %d, want 2", m.CriticalBlockedCount)
	}
	if m.StatusBlocked != 2 || m.DependencyBlocked != 2 {
		t.Errorf("StatusBlocked/DependencyBlocked = %d/%d, want 2/2", m.StatusBlocked, m.DependencyBlocked)
	}
}

func TestCompletionPct(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := CompletionPct(tt.done, tt.total); got != tt.want {
			t.Errorf("CompletionPct(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestDaysRemaining(t *testing.T) {
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	m := Metrics{EndDate: end}
	tests := []struct {
		now  time.Time
		want int
	}{
		{end.AddDate(0, 0, -3), 3},
		{end.Add(-36 * time.Hour), 2},
		{end, 0},
		{end.AddDate(0, 0, 2), 0},
	}
	for _, tt := range tests {
		if got := m.DaysRemaining(tt.now); got != tt.want {
			t.Errorf("DaysRemaining(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

func TestAggregateWithPrevious(t *testing.T) {
	s := setupSprint(t)
	addItem(t, s, store.WorkItemInput{SprintID: "s1", Status: models.StatusDone})
	addItem(t, s, store.WorkItemInput{SprintID: "s1"})

	r, err := AggregateWithPrevious(s, "s1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Delta != nil {
		t.Error("no previous metrics should give no delta")
	}

	prev := Metrics{CompletionPct: 64, DoneItems: 0}
	r, err = AggregateWithPrevious(s, "s1", &prev)
	if err != nil {
		t.Fatal(err)
	}
	if r.Delta == nil || r.Delta.CompletionPct != -14 || r.Delta.DoneItems != 1 {
		t.Errorf("Delta = %+v, want {-14 1}", r.Delta)
	}
}
