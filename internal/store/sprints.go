package store

import (
	"iter"
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// SprintInput holds parameters for creating a sprint.
type SprintInput struct {
	ID        string `validate:"omitempty,max=32"`
	ProjectID string `validate:"required"`
	Name      string `validate:"required,max=128"`
	Goal      string
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
	Status    models.SprintStatus
}

// SprintPatch holds optional sprint field updates. A sprint cannot move
// between projects.
type SprintPatch struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    *models.SprintStatus
}

func cloneSprint(sp *models.Sprint) models.Sprint { return *sp }

func (s *Store) indexSprint(sp *models.Sprint) {
	s.projectSprints.add(sp.ProjectID, sp.ID)
	if sp.Status == models.SprintActive {
		s.activeSprints[sp.ProjectID] = sp.ID
	}
}

func (s *Store) unindexSprint(sp *models.Sprint) {
	s.projectSprints.remove(sp.ProjectID, sp.ID)
	if s.activeSprints[sp.ProjectID] == sp.ID {
		delete(s.activeSprints, sp.ProjectID)
	}
}

// checkSprint validates the dates and the single-active-sprint rule for sp.
func (s *Store) checkSprint(sp *models.Sprint) error {
	if sp.EndDate.Before(sp.StartDate) {
		return invalid(KindSprint, sp.ID, "end date %s is before start date %s",
			sp.EndDate.Format(time.DateOnly), sp.StartDate.Format(time.DateOnly))
	}
	if !sp.Status.Valid() {
		return invalid(KindSprint, sp.ID, "invalid sprint status %q", sp.Status)
	}
	if sp.Status == models.SprintActive {
		if other, ok := s.activeSprints[sp.ProjectID]; ok && other != sp.ID {
			return conflict(KindSprint, sp.ID, []string{other}, "project %s already has an active sprint", sp.ProjectID)
		}
	}
	return nil
}

// CreateSprint creates a sprint in an existing project. Status defaults to
// planned.
func (s *Store) CreateSprint(in SprintInput) (models.Sprint, error) {
	if err := s.checkInput(KindSprint, in.ID, in); err != nil {
		return models.Sprint{}, err
	}
	status := in.Status
	if status == "" {
		status = models.SprintPlanned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newID(KindSprint, in.ID, s.sprints)
	if err != nil {
		return models.Sprint{}, err
	}
	if _, ok := s.projects[in.ProjectID]; !ok {
		return models.Sprint{}, missingRef(KindSprint, id, KindProject, in.ProjectID)
	}
	now := s.stamp(time.Time{})
	sp := models.Sprint{
		ID:        id,
		ProjectID: in.ProjectID,
		Name:      strings.TrimSpace(in.Name),
		Goal:      in.Goal,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.checkSprint(&sp); err != nil {
		return models.Sprint{}, err
	}
	if err := s.persist(Change{Op: OpPut, Entity: KindSprint, ID: id, Record: sp}); err != nil {
		return models.Sprint{}, err
	}
	s.sprints[id] = &sp
	s.indexSprint(&sp)
	return sp, nil
}

// GetSprint returns a sprint by id.
func (s *Store) GetSprint(id string) (models.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.sprints[id]
	if !ok {
		return models.Sprint{}, notFound(KindSprint, id)
	}
	return *sp, nil
}

// ListSprints returns a lazy sequence of sprints matching every filter.
func (s *Store) ListSprints(filters ...Filter[models.Sprint]) iter.Seq[models.Sprint] {
	return func(yield func(models.Sprint) bool) {
		for _, sp := range listSorted(s, s.sprints, cloneSprint, filters) {
			if !yield(sp) {
				return
			}
		}
	}
}

// ActiveSprint returns the active sprint of a project. ok is false when the
// project has none.
func (s *Store) ActiveSprint(projectID string) (sp models.Sprint, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, exists := s.projects[projectID]; !exists {
		return models.Sprint{}, false, notFound(KindProject, projectID)
	}
	id, ok := s.activeSprints[projectID]
	if !ok {
		return models.Sprint{}, false, nil
	}
	return *s.sprints[id], true, nil
}

// UpdateSprint applies patch to a sprint. Activating a sprint while the
// project already has another active one is a conflict.
func (s *Store) UpdateSprint(id string, patch SprintPatch) (models.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sprints[id]
	if !ok {
		return models.Sprint{}, notFound(KindSprint, id)
	}
	next := *cur
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.checkField(KindSprint, id, "name", name, "required,max=128"); err != nil {
			return models.Sprint{}, err
		}
		next.Name = name
	}
	if patch.Goal != nil {
		next.Goal = *patch.Goal
	}
	if patch.StartDate != nil {
		next.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		next.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if err := s.checkSprint(&next); err != nil {
		return models.Sprint{}, err
	}
	next.UpdatedAt = s.stamp(cur.UpdatedAt)
	if err := s.persist(Change{Op: OpPut, Entity: KindSprint, ID: id, Record: next}); err != nil {
		return models.Sprint{}, err
	}
	s.unindexSprint(cur)
	s.sprints[id] = &next
	s.indexSprint(&next)
	return next, nil
}

// DeleteSprint removes a sprint no work item is assigned to.
func (s *Store) DeleteSprint(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[id]
	if !ok {
		return notFound(KindSprint, id)
	}
	if refs := s.sprintItems.ids(id); len(refs) > 0 {
		return conflict(KindSprint, id, refs, "sprint is still referenced")
	}
	if err := s.persist(Change{Op: OpDelete, Entity: KindSprint, ID: id}); err != nil {
		return err
	}
	s.unindexSprint(sp)
	delete(s.sprints, id)
	return nil
}
