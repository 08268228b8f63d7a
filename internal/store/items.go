package store

import (
	"iter"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// WorkItemInput holds parameters for creating a work item. Type, Status and
// Priority default to task, todo and medium.
type WorkItemInput struct {
	ID          string `validate:"omitempty,max=32"`
	ProjectID   string `validate:"required"`
	SprintID    string
	Type        models.WorkItemType
	Title       string `validate:"required,max=256"`
	Description string
	Status      models.Status
	Priority    models.Priority
	OwnerID     string
	ParentID    string
	BlockerIDs  []string
}

// WorkItemPatch holds optional work item updates. For SprintID, OwnerID and
// ParentID a pointer to "" clears the reference. BlockerIDs replaces the
// whole blocker set.
type WorkItemPatch struct {
	ProjectID   *string
	SprintID    *string
	Type        *models.WorkItemType
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	OwnerID     *string
	ParentID    *string
	BlockerIDs  *[]string
}

func cloneItem(w *models.WorkItem) models.WorkItem {
	c := *w
	c.SprintID = cloneStrPtr(w.SprintID)
	c.OwnerID = cloneStrPtr(w.OwnerID)
	c.ParentID = cloneStrPtr(w.ParentID)
	c.BlockerIDs = append([]string{}, w.BlockerIDs...)
	return c
}

func (s *Store) indexItem(w *models.WorkItem) {
	s.projectItems.add(w.ProjectID, w.ID)
	s.sprintItems.add(deref(w.SprintID), w.ID)
	s.ownedItems.add(deref(w.OwnerID), w.ID)
	s.children.add(deref(w.ParentID), w.ID)
	for _, b := range w.BlockerIDs {
		s.dependents.add(b, w.ID)
	}
}

func (s *Store) unindexItem(w *models.WorkItem) {
	s.projectItems.remove(w.ProjectID, w.ID)
	s.sprintItems.remove(deref(w.SprintID), w.ID)
	s.ownedItems.remove(deref(w.OwnerID), w.ID)
	s.children.remove(deref(w.ParentID), w.ID)
	for _, b := range w.BlockerIDs {
		s.dependents.remove(b, w.ID)
	}
}

// blockerSet returns ids sorted with duplicates and blanks removed.
func blockerSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func checkItemEnums(w *models.WorkItem) error {
	if !w.Type.Valid() {
		return invalid(KindWorkItem, w.ID, "invalid work item type %q", w.Type)
	}
	if !w.Status.Valid() {
		return invalid(KindWorkItem, w.ID, "invalid status %q", w.Status)
	}
	if !w.Priority.Valid() {
		return invalid(KindWorkItem, w.ID, "invalid priority %q", w.Priority)
	}
	return nil
}

// CreateWorkItem creates a work item. Every reference must resolve, and the
// sprint, when set, must belong to the item's project.
func (s *Store) CreateWorkItem(in WorkItemInput) (models.WorkItem, error) {
	if err := s.checkInput(KindWorkItem, in.ID, in); err != nil {
		return models.WorkItem{}, err
	}
	if in.ID != "" && in.ParentID == in.ID {
		return models.WorkItem{}, invalid(KindWorkItem, in.ID, "item cannot be its own parent")
	}
	w := models.WorkItem{
		ProjectID:   in.ProjectID,
		SprintID:    strPtr(in.SprintID),
		Type:        orDefault(in.Type, models.TypeTask),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      orDefault(in.Status, models.StatusToDo),
		Priority:    orDefault(in.Priority, models.PriorityMedium),
		OwnerID:     strPtr(in.OwnerID),
		ParentID:    strPtr(in.ParentID),
		BlockerIDs:  blockerSet(in.BlockerIDs),
	}
	if err := checkItemEnums(&w); err != nil {
		return models.WorkItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := newID(KindWorkItem, in.ID, s.items)
	if err != nil {
		return models.WorkItem{}, err
	}
	w.ID = id
	// A new item has no children or dependents, so it cannot close a cycle.
	if err := s.checkItemRefs(&w); err != nil {
		return models.WorkItem{}, err
	}
	now := s.stamp(time.Time{})
	w.CreatedAt, w.UpdatedAt = now, now
	if err := s.persist(Change{Op: OpPut, Entity: KindWorkItem, ID: id, Record: cloneItem(&w)}); err != nil {
		return models.WorkItem{}, err
	}
	s.items[id] = &w
	s.indexItem(&w)
	return cloneItem(&w), nil
}

// orDefault returns v, or def when v is empty.
func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

// GetWorkItem returns a work item by id.
func (s *Store) GetWorkItem(id string) (models.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.items[id]
	if !ok {
		return models.WorkItem{}, notFound(KindWorkItem, id)
	}
	return cloneItem(w), nil
}

// ListWorkItems returns a lazy sequence of work items matching every filter.
func (s *Store) ListWorkItems(filters ...Filter[models.WorkItem]) iter.Seq[models.WorkItem] {
	return func(yield func(models.WorkItem) bool) {
		for _, w := range listSorted(s, s.items, cloneItem, filters) {
			if !yield(w) {
				return
			}
		}
	}
}

// UpdateWorkItem applies patch to a work item.
func (s *Store) UpdateWorkItem(id string, patch WorkItemPatch) (models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[id]
	if !ok {
		return models.WorkItem{}, notFound(KindWorkItem, id)
	}
	next := cloneItem(cur)
	if patch.ProjectID != nil {
		next.ProjectID = *patch.ProjectID
	}
	if patch.SprintID != nil {
		next.SprintID = strPtr(*patch.SprintID)
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := s.checkField(KindWorkItem, id, "title", title, "required,max=256"); err != nil {
			return models.WorkItem{}, err
		}
		next.Title = title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.OwnerID != nil {
		next.OwnerID = strPtr(*patch.OwnerID)
	}
	if patch.ParentID != nil {
		next.ParentID = strPtr(*patch.ParentID)
	}
	if patch.BlockerIDs != nil {
		next.BlockerIDs = blockerSet(*patch.BlockerIDs)
	}
	return s.commitItem(cur, next)
}

// commitItem validates next against the graph and writes it in place of
// cur. Callers hold the write lock.
func (s *Store) commitItem(cur *models.WorkItem, next models.WorkItem) (models.WorkItem, error) {
	if err := checkItemEnums(&next); err != nil {
		return models.WorkItem{}, err
	}
	if err := s.checkItemRefs(&next); err != nil {
		return models.WorkItem{}, err
	}
	if next.ParentID != nil && deref(next.ParentID) != deref(cur.ParentID) && s.parentCycle(next.ID, *next.ParentID) {
		return models.WorkItem{}, invalid(KindWorkItem, next.ID, "parent %s forms a cycle", *next.ParentID)
	}
	for _, b := range next.BlockerIDs {
		if !slices.Contains(cur.BlockerIDs, b) && s.blockerReaches(b, next.ID) {
			return models.WorkItem{}, invalid(KindWorkItem, next.ID, "blocker %s forms a cycle", b)
		}
	}
	next.UpdatedAt = s.stamp(cur.UpdatedAt)
	if err := s.persist(Change{Op: OpPut, Entity: KindWorkItem, ID: next.ID, Record: cloneItem(&next)}); err != nil {
		return models.WorkItem{}, err
	}
	s.unindexItem(cur)
	s.items[next.ID] = &next
	s.indexItem(&next)
	return cloneItem(&next), nil
}

// DeleteWorkItem removes a work item that is neither a parent nor a blocker
// of another item.
func (s *Store) DeleteWorkItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.items[id]
	if !ok {
		return notFound(KindWorkItem, id)
	}
	if refs := mergeRefs(s.children.ids(id), s.dependents.ids(id)); len(refs) > 0 {
		return conflict(KindWorkItem, id, refs, "work item is still referenced")
	}
	if err := s.persist(Change{Op: OpDelete, Entity: KindWorkItem, ID: id}); err != nil {
		return err
	}
	s.unindexItem(w)
	delete(s.items, id)
	return nil
}

// AddBlocker records that itemID is blocked by blockerID. Adding an edge
// that already exists returns the item unchanged.
func (s *Store) AddBlocker(itemID, blockerID string) (models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[itemID]
	if !ok {
		return models.WorkItem{}, notFound(KindWorkItem, itemID)
	}
	blockerID = strings.TrimSpace(blockerID)
	if blockerID == "" {
		return models.WorkItem{}, invalid(KindWorkItem, itemID, "blocker id is required")
	}
	if slices.Contains(cur.BlockerIDs, blockerID) {
		return cloneItem(cur), nil
	}
	next := cloneItem(cur)
	next.BlockerIDs = blockerSet(append(next.BlockerIDs, blockerID))
	return s.commitItem(cur, next)
}

// RemoveBlocker deletes the edge "itemID blocked by blockerID".
func (s *Store) RemoveBlocker(itemID, blockerID string) (models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[itemID]
	if !ok {
		return models.WorkItem{}, notFound(KindWorkItem, itemID)
	}
	if !slices.Contains(cur.BlockerIDs, blockerID) {
		return models.WorkItem{}, invalid(KindWorkItem, itemID, "not blocked by %s", blockerID)
	}
	next := cloneItem(cur)
	next.BlockerIDs = slices.DeleteFunc(next.BlockerIDs, func(b string) bool { return b == blockerID })
	return s.commitItem(cur, next)
}

// Children returns the direct children of a work item, ordered by id.
func (s *Store) Children(itemID string) ([]models.WorkItem, error) {
	return s.related(itemID, s.children)
}

// Dependents returns the work items blocked by itemID, ordered by id.
func (s *Store) Dependents(itemID string) ([]models.WorkItem, error) {
	return s.related(itemID, s.dependents)
}

func (s *Store) related(itemID string, ix refIndex) ([]models.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.items[itemID]; !ok {
		return nil, notFound(KindWorkItem, itemID)
	}
	ids := ix.ids(itemID)
	out := make([]models.WorkItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneItem(s.items[id]))
	}
	return out, nil
}
