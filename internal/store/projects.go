package store

import (
	"iter"
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// ProjectInput holds parameters for creating a project.
type ProjectInput struct {
	ID     string `validate:"omitempty,max=32"`
	Name   string `validate:"required,max=128"`
	Type   models.ProjectType
	TeamID string `validate:"required"`
}

// ProjectPatch holds optional project field updates.
type ProjectPatch struct {
	Name   *string
	Type   *models.ProjectType
	TeamID *string
}

func cloneProject(p *models.Project) models.Project { return *p }

// CreateProject creates a project owned by an existing team. Type defaults
// to scrum.
func (s *Store) CreateProject(in ProjectInput) (models.Project, error) {
	if err := s.checkInput(KindProject, in.ID, in); err != nil {
		return models.Project{}, err
	}
	typ := in.Type
	if typ == "" {
		typ = models.ProjectScrum
	}
	if !typ.Valid() {
		return models.Project{}, invalid(KindProject, in.ID, "invalid project type %q", typ)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newID(KindProject, in.ID, s.projects)
	if err != nil {
		return models.Project{}, err
	}
	if _, ok := s.teams[in.TeamID]; !ok {
		return models.Project{}, missingRef(KindProject, id, KindTeam, in.TeamID)
	}
	now := s.stamp(time.Time{})
	p := models.Project{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Type:      typ,
		TeamID:    in.TeamID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.persist(Change{Op: OpPut, Entity: KindProject, ID: id, Record: p}); err != nil {
		return models.Project{}, err
	}
	s.projects[id] = &p
	s.teamProjects.add(p.TeamID, id)
	return p, nil
}

// GetProject returns a project by id.
func (s *Store) GetProject(id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, notFound(KindProject, id)
	}
	return *p, nil
}

// ListProjects returns a lazy sequence of projects matching every filter.
func (s *Store) ListProjects(filters ...Filter[models.Project]) iter.Seq[models.Project] {
	return func(yield func(models.Project) bool) {
		for _, p := range listSorted(s, s.projects, cloneProject, filters) {
			if !yield(p) {
				return
			}
		}
	}
}

// UpdateProject applies patch to a project.
func (s *Store) UpdateProject(id string, patch ProjectPatch) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.projects[id]
	if !ok {
		return models.Project{}, notFound(KindProject, id)
	}
	next := *cur
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.checkField(KindProject, id, "name", name, "required,max=128"); err != nil {
			return models.Project{}, err
		}
		next.Name = name
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return models.Project{}, invalid(KindProject, id, "invalid project type %q", *patch.Type)
		}
		next.Type = *patch.Type
	}
	if patch.TeamID != nil {
		if _, ok := s.teams[*patch.TeamID]; !ok {
			return models.Project{}, missingRef(KindProject, id, KindTeam, *patch.TeamID)
		}
		next.TeamID = *patch.TeamID
	}
	next.UpdatedAt = s.stamp(cur.UpdatedAt)
	if err := s.persist(Change{Op: OpPut, Entity: KindProject, ID: id, Record: next}); err != nil {
		return models.Project{}, err
	}
	s.teamProjects.remove(cur.TeamID, id)
	s.projects[id] = &next
	s.teamProjects.add(next.TeamID, id)
	return next, nil
}

// DeleteProject removes a project with no sprints and no work items.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return notFound(KindProject, id)
	}
	if refs := mergeRefs(s.projectSprints.ids(id), s.projectItems.ids(id)); len(refs) > 0 {
		return conflict(KindProject, id, refs, "project is still referenced")
	}
	if err := s.persist(Change{Op: OpDelete, Entity: KindProject, ID: id}); err != nil {
		return err
	}
	s.teamProjects.remove(p.TeamID, id)
	delete(s.projects, id)
	return nil
}
