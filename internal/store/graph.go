package store

import "github.com/zulandar/tickora/internal/models"

// checkItemRefs verifies that every reference held by w resolves and that
// its sprint belongs to its project. Callers hold the write lock and have
// placed w's siblings in s.items already.
func (s *Store) checkItemRefs(w *models.WorkItem) error {
	if _, ok := s.projects[w.ProjectID]; !ok {
		return missingRef(KindWorkItem, w.ID, KindProject, w.ProjectID)
	}
	if w.SprintID != nil {
		sp, ok := s.sprints[*w.SprintID]
		if !ok {
			return missingRef(KindWorkItem, w.ID, KindSprint, *w.SprintID)
		}
		if sp.ProjectID != w.ProjectID {
			return invalid(KindWorkItem, w.ID, "sprint %s belongs to project %s, not %s", sp.ID, sp.ProjectID, w.ProjectID)
		}
	}
	if w.OwnerID != nil {
		if _, ok := s.users[*w.OwnerID]; !ok {
			return missingRef(KindWorkItem, w.ID, KindUser, *w.OwnerID)
		}
	}
	if w.ParentID != nil {
		if *w.ParentID == w.ID {
			return invalid(KindWorkItem, w.ID, "item cannot be its own parent")
		}
		if _, ok := s.items[*w.ParentID]; !ok {
			return missingRef(KindWorkItem, w.ID, KindWorkItem, *w.ParentID)
		}
	}
	for _, b := range w.BlockerIDs {
		if b == w.ID {
			return invalid(KindWorkItem, w.ID, "item cannot block itself")
		}
		if _, ok := s.items[b]; !ok {
			return missingRef(KindWorkItem, w.ID, KindWorkItem, b)
		}
	}
	return nil
}

// parentCycle reports whether making parentID the parent of id would close
// a loop, by walking the ancestor chain of parentID.
func (s *Store) parentCycle(id, parentID string) bool {
	visited := make(map[string]bool)
	for cur := parentID; cur != ""; {
		if cur == id {
			return true
		}
		if visited[cur] {
			return true
		}
		visited[cur] = true
		w, ok := s.items[cur]
		if !ok {
			return false
		}
		cur = deref(w.ParentID)
	}
	return false
}

// blockerReaches reports whether target is reachable from current by
// following blocked-by edges. Adding "id blocked by b" is a cycle exactly
// when blockerReaches(b, id).
func (s *Store) blockerReaches(current, target string) bool {
	return reachable(s.items, current, target, make(map[string]bool))
}

// reachable performs a DFS from current following blocked-by edges.
func reachable(items map[string]*models.WorkItem, current, target string, visited map[string]bool) bool {
	if current == target {
		return true
	}
	if visited[current] {
		return false
	}
	visited[current] = true

	w, ok := items[current]
	if !ok {
		return false
	}
	for _, b := range w.BlockerIDs {
		if reachable(items, b, target, visited) {
			return true
		}
	}
	return false
}
