// Package store is the in-process entity store for Tickora: the single owner
// of users, teams, projects, sprints and work items.
//
// All mutations are serialized by one write lock and are atomic: a mutation
// either applies fully (persisted write-through, then committed in memory)
// or fails leaving no trace. Reads take the read lock and copy records out,
// so readers never observe a half-applied mutation and never alias store
// memory.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/zulandar/tickora/internal/models"
)

// Op is the kind of a persisted change.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Change is a single record write handed to the Persister. Record holds a
// value of the models type matching Entity for OpPut, and is nil for OpDelete.
type Change struct {
	Op     Op
	Entity Kind
	ID     string
	Record any
}

// Snapshot is a full copy of store contents.
type Snapshot struct {
	Users     []models.User
	Teams     []models.Team
	Projects  []models.Project
	Sprints   []models.Sprint
	WorkItems []models.WorkItem
}

// Persister is the durable-storage collaborator. Apply receives every change
// of one mutation and must apply all or none of them.
type Persister interface {
	Load() (*Snapshot, error)
	Apply(changes []Change) error
}

// Options configures a Store.
type Options struct {
	// Clock returns the current time; defaults to time.Now in UTC.
	Clock func() time.Time
	// Persister receives write-through changes. Nil means memory only.
	Persister Persister
}

// Store owns every entity record.
type Store struct {
	mu        sync.RWMutex
	clock     func() time.Time
	persister Persister
	validate  *validator.Validate

	users    map[string]*models.User
	teams    map[string]*models.Team
	projects map[string]*models.Project
	sprints  map[string]*models.Sprint
	items    map[string]*models.WorkItem

	emails         map[string]string // normalized email -> user id
	activeSprints  map[string]string // project id -> active sprint id
	members        refIndex          // team -> users
	teamProjects   refIndex          // team -> projects
	projectSprints refIndex          // project -> sprints
	projectItems   refIndex          // project -> work items
	sprintItems    refIndex          // sprint -> work items
	ownedItems     refIndex          // user -> work items
	children       refIndex          // parent -> work items
	dependents     refIndex          // blocker -> work items it blocks
}

// New creates an empty store.
func New(opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		clock:          clock,
		persister:      opts.Persister,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		users:          make(map[string]*models.User),
		teams:          make(map[string]*models.Team),
		projects:       make(map[string]*models.Project),
		sprints:        make(map[string]*models.Sprint),
		items:          make(map[string]*models.WorkItem),
		emails:         make(map[string]string),
		activeSprints:  make(map[string]string),
		members:        make(refIndex),
		teamProjects:   make(refIndex),
		projectSprints: make(refIndex),
		projectItems:   make(refIndex),
		sprintItems:    make(refIndex),
		ownedItems:     make(refIndex),
		children:       make(refIndex),
		dependents:     make(refIndex),
	}
}

// Open creates a store and loads its contents from opts.Persister. The
// loaded snapshot must satisfy every store invariant.
func Open(opts Options) (*Store, error) {
	s := New(opts)
	if s.persister == nil {
		return s, nil
	}
	snap, err := s.persister.Load()
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	if err := s.restore(snap); err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	return s, nil
}

// stamp returns a timestamp strictly after prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.clock()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

// persist writes changes through to the persister. Callers hold the write
// lock and commit in memory only when persist succeeds.
func (s *Store) persist(changes ...Change) error {
	if s.persister == nil || len(changes) == 0 {
		return nil
	}
	if err := s.persister.Apply(changes); err != nil {
		return fmt.Errorf("store: persist %s %s: %w", changes[0].Entity, changes[0].ID, err)
	}
	return nil
}

// Snapshot returns a consistent copy of every record, each collection sorted
// by id.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Users:     sortedClones(s.users, cloneUser),
		Teams:     sortedClones(s.teams, s.teamView),
		Projects:  sortedClones(s.projects, cloneProject),
		Sprints:   sortedClones(s.sprints, cloneSprint),
		WorkItems: sortedClones(s.items, cloneItem),
	}
}

// restore rebuilds the store from a snapshot, validating references in
// dependency order.
func (s *Store) restore(snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range snap.Teams {
		t := cloneTeam(&t)
		s.teams[t.ID] = &t
	}
	for _, u := range snap.Users {
		u := cloneUser(&u)
		if u.TeamID != nil {
			if _, ok := s.teams[*u.TeamID]; !ok {
				return missingRef(KindUser, u.ID, KindTeam, *u.TeamID)
			}
		}
		key := normalizeEmail(u.Email)
		if other, dup := s.emails[key]; dup {
			return conflict(KindUser, u.ID, []string{other}, "email %s already in use", u.Email)
		}
		s.users[u.ID] = &u
		s.indexUser(&u)
	}
	for _, p := range snap.Projects {
		p := cloneProject(&p)
		if _, ok := s.teams[p.TeamID]; !ok {
			return missingRef(KindProject, p.ID, KindTeam, p.TeamID)
		}
		s.projects[p.ID] = &p
		s.teamProjects.add(p.TeamID, p.ID)
	}
	for _, sp := range snap.Sprints {
		sp := cloneSprint(&sp)
		if _, ok := s.projects[sp.ProjectID]; !ok {
			return missingRef(KindSprint, sp.ID, KindProject, sp.ProjectID)
		}
		if err := s.checkSprint(&sp); err != nil {
			return err
		}
		s.sprints[sp.ID] = &sp
		s.indexSprint(&sp)
	}
	// Items may reference each other in any order: insert all, then check.
	for _, w := range snap.WorkItems {
		w := cloneItem(&w)
		s.items[w.ID] = &w
	}
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		w := s.items[id]
		if err := checkItemEnums(w); err != nil {
			return err
		}
		if err := s.checkItemRefs(w); err != nil {
			return err
		}
		s.indexItem(w)
	}
	for _, id := range ids {
		w := s.items[id]
		if s.parentCycle(w.ID, deref(w.ParentID)) {
			return invalid(KindWorkItem, w.ID, "parent chain forms a cycle")
		}
		for _, b := range w.BlockerIDs {
			if s.blockerReaches(b, w.ID) {
				return invalid(KindWorkItem, w.ID, "blocker %s forms a cycle", b)
			}
		}
	}
	return nil
}

func sortedClones[T any](m map[string]*T, clone func(*T) T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(m[k]))
	}
	return out
}

// listSorted copies every record matching filters under the read lock,
// ordered by id.
func listSorted[T any](s *Store, m map[string]*T, clone func(*T) T, filters []Filter[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		v := clone(m[k])
		if matchAll(v, filters) {
			out = append(out, v)
		}
	}
	return out
}
