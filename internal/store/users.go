package store

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// UserInput holds parameters for creating a user.
type UserInput struct {
	ID     string `validate:"omitempty,max=32"` // optional explicit id
	Email  string `validate:"required,email,max=255"`
	Name   string `validate:"required,max=128"`
	Role   models.Role
	Avatar string `validate:"omitempty,max=512"`
	TeamID string
}

// UserPatch holds optional user field updates. A TeamID pointing at ""
// removes the user from their team.
type UserPatch struct {
	Email  *string
	Name   *string
	Role   *models.Role
	Avatar *string
	TeamID *string
}

func cloneUser(u *models.User) models.User {
	c := *u
	c.TeamID = cloneStrPtr(u.TeamID)
	return c
}

func (s *Store) indexUser(u *models.User) {
	s.emails[normalizeEmail(u.Email)] = u.ID
	s.members.add(deref(u.TeamID), u.ID)
}

func (s *Store) unindexUser(u *models.User) {
	delete(s.emails, normalizeEmail(u.Email))
	s.members.remove(deref(u.TeamID), u.ID)
}

// CreateUser creates a user. Emails are unique case-insensitively.
func (s *Store) CreateUser(in UserInput) (models.User, error) {
	if err := s.checkInput(KindUser, in.ID, in); err != nil {
		return models.User{}, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleTeamMember
	}
	if !role.Valid() {
		return models.User{}, invalid(KindUser, in.ID, "invalid role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newID(KindUser, in.ID, s.users)
	if err != nil {
		return models.User{}, err
	}
	if other, dup := s.emails[normalizeEmail(in.Email)]; dup {
		return models.User{}, conflict(KindUser, id, []string{other}, "email %s already in use", in.Email)
	}

	now := s.stamp(time.Time{})
	u := models.User{
		ID:        id,
		Email:     strings.TrimSpace(in.Email),
		Name:      strings.TrimSpace(in.Name),
		Role:      role,
		Avatar:    in.Avatar,
		TeamID:    strPtr(in.TeamID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	changes := []Change{{Op: OpPut, Entity: KindUser, ID: id, Record: cloneUser(&u)}}
	teams, err := s.touchTeams(KindUser, id, in.TeamID)
	if err != nil {
		return models.User{}, err
	}
	changes = append(changes, teamChanges(teams)...)
	if err := s.persist(changes...); err != nil {
		return models.User{}, err
	}

	s.users[id] = &u
	s.indexUser(&u)
	s.commitTeams(teams)
	return cloneUser(&u), nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, notFound(KindUser, id)
	}
	return cloneUser(u), nil
}

// FindUserByEmail returns the user registered under email.
func (s *Store) FindUserByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return models.User{}, notFound(KindUser, email)
	}
	return cloneUser(s.users[id]), nil
}

// ListUsers returns a lazy sequence of users matching every filter, ordered
// by id. Each range re-reads the store.
func (s *Store) ListUsers(filters ...Filter[models.User]) iter.Seq[models.User] {
	return func(yield func(models.User) bool) {
		for _, u := range listSorted(s, s.users, cloneUser, filters) {
			if !yield(u) {
				return
			}
		}
	}
}

// UpdateUser applies patch to the user with the given id.
func (s *Store) UpdateUser(id string, patch UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[id]
	if !ok {
		return models.User{}, notFound(KindUser, id)
	}
	next := cloneUser(cur)

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := s.validate.Var(email, "required,email,max=255"); err != nil {
			return models.User{}, invalid(KindUser, id, "email %q is not a valid email address", email)
		}
		if other, dup := s.emails[normalizeEmail(email)]; dup && other != id {
			return models.User{}, conflict(KindUser, id, []string{other}, "email %s already in use", email)
		}
		next.Email = email
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := s.checkField(KindUser, id, "name", name, "required,max=128"); err != nil {
			return models.User{}, err
		}
		next.Name = name
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return models.User{}, invalid(KindUser, id, "invalid role %q", *patch.Role)
		}
		next.Role = *patch.Role
	}
	if patch.Avatar != nil {
		if err := s.checkField(KindUser, id, "avatar", *patch.Avatar, "omitempty,max=512"); err != nil {
			return models.User{}, err
		}
		next.Avatar = *patch.Avatar
	}

	var teams []*models.Team
	if patch.TeamID != nil && *patch.TeamID != deref(cur.TeamID) {
		next.TeamID = strPtr(*patch.TeamID)
		var err error
		teams, err = s.touchTeams(KindUser, id, deref(cur.TeamID), *patch.TeamID)
		if err != nil {
			return models.User{}, err
		}
	}
	next.UpdatedAt = s.stamp(cur.UpdatedAt)

	changes := append([]Change{{Op: OpPut, Entity: KindUser, ID: id, Record: cloneUser(&next)}}, teamChanges(teams)...)
	if err := s.persist(changes...); err != nil {
		return models.User{}, err
	}

	s.unindexUser(cur)
	s.users[id] = &next
	s.indexUser(&next)
	s.commitTeams(teams)
	return cloneUser(&next), nil
}

// DeleteUser removes a user. Users that own work items or belong to a team
// cannot be deleted.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return notFound(KindUser, id)
	}
	refs := s.ownedItems.ids(id)
	if u.TeamID != nil {
		refs = mergeRefs(refs, []string{*u.TeamID})
	}
	if len(refs) > 0 {
		return conflict(KindUser, id, refs, "user is still referenced")
	}
	if err := s.persist(Change{Op: OpDelete, Entity: KindUser, ID: id}); err != nil {
		return err
	}
	s.unindexUser(u)
	delete(s.users, id)
	return nil
}

// touchTeams resolves the given team ids (empty ids skipped) and returns
// copies with a fresh UpdatedAt, ready to persist and commit.
func (s *Store) touchTeams(entity Kind, id string, teamIDs ...string) ([]*models.Team, error) {
	var out []*models.Team
	for _, tid := range teamIDs {
		if tid == "" || slices.ContainsFunc(out, func(t *models.Team) bool { return t.ID == tid }) {
			continue
		}
		cur, ok := s.teams[tid]
		if !ok {
			return nil, missingRef(entity, id, KindTeam, tid)
		}
		next := *cur
		next.UpdatedAt = s.stamp(cur.UpdatedAt)
		out = append(out, &next)
	}
	return out, nil
}

func teamChanges(teams []*models.Team) []Change {
	changes := make([]Change, 0, len(teams))
	for _, t := range teams {
		changes = append(changes, Change{Op: OpPut, Entity: KindTeam, ID: t.ID, Record: *t})
	}
	return changes
}

func (s *Store) commitTeams(teams []*models.Team) {
	for _, t := range teams {
		s.teams[t.ID] = t
	}
}
