package db

import (
	"fmt"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Seed loads the sample workspace: one admin, one team, a Scrum project with
// an active sprint and three work items. Records that already exist are
// left alone, so seeding twice is harmless. It returns how many records
// were created.
func Seed(s *store.Store) (int, error) {
	steps := []struct {
		name string
		run  func() error
	}{
		{"team t1", func() error {
			_, err := s.CreateTeam(store.TeamInput{ID: "t1", Name: "Engineering Alpha"})
			return err
		}},
		{"user u1", func() error {
			_, err := s.CreateUser(store.UserInput{
				ID:     "u1",
				Email:  "admin@tickora.ai",
				Name:   "Alex Rivera",
				Role:   models.RoleAdmin,
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Alex",
				TeamID: "t1",
			})
			return err
		}},
		{"project p1", func() error {
			_, err := s.CreateProject(store.ProjectInput{ID: "p1", Name: "Tickora MVP-1", Type: models.ProjectScrum, TeamID: "t1"})
			return err
		}},
		{"sprint s1", func() error {
			_, err := s.CreateSprint(store.SprintInput{
				ID:        "s1",
				ProjectID: "p1",
				Name:      "Sprint 1: Foundation",
				StartDate: date(2026, time.January, 1),
				EndDate:   date(2026, time.January, 14),
				Status:    models.SprintActive,
			})
			return err
		}},
		{"item w1", seedItem(s, "w1", models.TypeUserStory, "Implement Auth Flow", "User signup with email/SSO and verification", models.StatusDone, models.PriorityHigh)},
		{"item w2", seedItem(s, "w2", models.TypeUserStory, "AI Standup Integration", "Automated standup pings and response recording", models.StatusInProgress, models.PriorityCritical)},
		{"item w3", seedItem(s, "w3", models.TypeBug, "Fix LLM API Timeout", "LLM calls are timing out after 30s", models.StatusToDo, models.PriorityMedium)},
	}

	created := 0
	for _, st := range steps {
		err := st.run()
		switch {
		case err == nil:
			created++
		case store.IsConflict(err):
			// already seeded
		default:
			return created, fmt.Errorf("db: seed %s: %w", st.name, err)
		}
	}
	return created, nil
}

func seedItem(s *store.Store, id string, typ models.WorkItemType, title, desc string, status models.Status, prio models.Priority) func() error {
	return func() error {
		_, err := s.CreateWorkItem(store.WorkItemInput{
			ID:          id,
			ProjectID:   "p1",
			SprintID:    "s1",
			Type:        typ,
			Title:       title,
			Description: desc,
			Status:      status,
			Priority:    prio,
			OwnerID:     "u1",
		})
		return err
	}
}
