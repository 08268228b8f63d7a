package store

import (
	"iter"
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// TeamInput holds parameters for creating a team.
type TeamInput struct {
	ID   string `validate:"omitempty,max=32"`
	Name string `validate:"required,max=128"`
}

// TeamPatch holds optional team field updates.
type TeamPatch struct {
	Name *string
}

func cloneTeam(t *models.Team) models.Team {
	c := *t
	c.Members = nil
	return c
}

// teamView copies a team and fills Members from the membership index.
// Callers hold at least the read lock.
func (s *Store) teamView(t *models.Team) models.Team {
	c := cloneTeam(t)
	c.Members = s.members.ids(t.ID)
	if c.Members == nil {
		c.Members = []string{}
	}
	return c
}

// CreateTeam creates an empty team.
func (s *Store) CreateTeam(in TeamInput) (models.Team, error) {
	if err := s.checkInput(KindTeam, in.ID, in); err != nil {
		return models.Team{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newID(KindTeam, in.ID, s.teams)
	if err != nil {
		return models.Team{}, err
	}
	now := s.stamp(time.Time{})
	t := models.Team{ID: id, Name: strings.TrimSpace(in.Name), CreatedAt: now, UpdatedAt: now}
	if err := s.persist(Change{Op: OpPut, Entity: KindTeam, ID: id, Record: cloneTeam(&t)}); err != nil {
		return models.Team{}, err
	}
	s.teams[id] = &t
	return s.teamView(&t), nil
}

// GetTeam returns a team with its member ids.
func (s *Store) GetTeam(id string) (models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return models.Team{}, notFound(KindTeam, id)
	}
	return s.teamView(t), nil
}

// ListTeams returns a lazy sequence of teams matching every filter.
func (s *Store) ListTeams(filters ...Filter[models.Team]) iter.Seq[models.Team] {
	return func(yield func(models.Team) bool) {
		for _, t := range listSorted(s, s.teams, s.teamView, filters) {
			if !yield(t) {
				return
			}
		}
	}
}

// UpdateTeam applies patch to a team.
func (s *Store) UpdateTeam(id string, patch TeamPatch) (models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.teams[id]
	if !ok {
		return models.Team{}, notFound(KindTeam, id)
	}
	next := cloneTeam(cur)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.checkField(KindTeam, id, "name", name, "required,max=128"); err != nil {
			return models.Team{}, err
		}
		next.Name = name
	}
	next.UpdatedAt = s.stamp(cur.UpdatedAt)
	if err := s.persist(Change{Op: OpPut, Entity: KindTeam, ID: id, Record: cloneTeam(&next)}); err != nil {
		return models.Team{}, err
	}
	s.teams[id] = &next
	return s.teamView(&next), nil
}

// DeleteTeam removes a team that has no members and owns no projects.
func (s *Store) DeleteTeam(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[id]; !ok {
		return notFound(KindTeam, id)
	}
	if refs := mergeRefs(s.members.ids(id), s.teamProjects.ids(id)); len(refs) > 0 {
		return conflict(KindTeam, id, refs, "team is still referenced")
	}
	if err := s.persist(Change{Op: OpDelete, Entity: KindTeam, ID: id}); err != nil {
		return err
	}
	delete(s.teams, id)
	return nil
}

// AddTeamMember puts a user on a team. A user belongs to at most one team,
// so this moves them off any previous team.
func (s *Store) AddTeamMember(teamID, userID string) (models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[teamID]; !ok {
		return models.Team{}, notFound(KindTeam, teamID)
	}
	cur, ok := s.users[userID]
	if !ok {
		return models.Team{}, missingRef(KindTeam, teamID, KindUser, userID)
	}
	if deref(cur.TeamID) == teamID {
		return s.teamView(s.teams[teamID]), nil
	}
	return s.moveUser(cur, teamID, teamID)
}

// RemoveTeamMember takes a user off a team.
func (s *Store) RemoveTeamMember(teamID, userID string) (models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[teamID]; !ok {
		return models.Team{}, notFound(KindTeam, teamID)
	}
	cur, ok := s.users[userID]
	if !ok {
		return models.Team{}, missingRef(KindTeam, teamID, KindUser, userID)
	}
	if deref(cur.TeamID) != teamID {
		return models.Team{}, invalid(KindTeam, teamID, "user %s is not a member", userID)
	}
	return s.moveUser(cur, "", teamID)
}

// moveUser sets a user's team to newTeam and returns the view of team
// resultTeam after the move. Callers hold the write lock.
func (s *Store) moveUser(cur *models.User, newTeam, resultTeam string) (models.Team, error) {
	teams, err := s.touchTeams(KindTeam, resultTeam, deref(cur.TeamID), newTeam)
	if err != nil {
		return models.Team{}, err
	}
	next := cloneUser(cur)
	next.TeamID = strPtr(newTeam)
	next.UpdatedAt = s.stamp(cur.UpdatedAt)

	changes := append([]Change{{Op: OpPut, Entity: KindUser, ID: cur.ID, Record: cloneUser(&next)}}, teamChanges(teams)...)
	if err := s.persist(changes...); err != nil {
		return models.Team{}, err
	}
	s.unindexUser(cur)
	s.users[cur.ID] = &next
	s.indexUser(&next)
	s.commitTeams(teams)
	return s.teamView(s.teams[resultTeam]), nil
}
