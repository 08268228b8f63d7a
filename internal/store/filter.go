package store

import (
	"slices"

	"github.com/zulandar/tickora/internal/models"
)

// Filter is a predicate over a record. List operations keep records for
// which every supplied filter returns true.
type Filter[T any] func(T) bool

func matchAll[T any](v T, filters []Filter[T]) bool {
	for _, f := range filters {
		if f != nil && !f(v) {
			return false
		}
	}
	return true
}

// Any combines filters with OR semantics.
func Any[T any](filters ...Filter[T]) Filter[T] {
	return func(v T) bool {
		for _, f := range filters {
			if f(v) {
				return true
			}
		}
		return false
	}
}

// ItemsInProject keeps work items of the given project.
func ItemsInProject(projectID string) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return w.ProjectID == projectID }
}

// ItemsInSprint keeps work items assigned to the given sprint.
func ItemsInSprint(sprintID string) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return w.SprintID != nil && *w.SprintID == sprintID }
}

// ItemsWithStatus keeps work items whose status is one of statuses.
func ItemsWithStatus(statuses ...models.Status) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return slices.Contains(statuses, w.Status) }
}

// ItemsWithPriority keeps work items whose priority is one of priorities.
func ItemsWithPriority(priorities ...models.Priority) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return slices.Contains(priorities, w.Priority) }
}

// ItemsOfType keeps work items whose type is one of types.
func ItemsOfType(types ...models.WorkItemType) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return slices.Contains(types, w.Type) }
}

// ItemsOwnedBy keeps work items owned by the given user.
func ItemsOwnedBy(userID string) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return w.OwnerID != nil && *w.OwnerID == userID }
}

// ItemsWithParent keeps direct children of the given work item.
func ItemsWithParent(parentID string) Filter[models.WorkItem] {
	return func(w models.WorkItem) bool { return w.ParentID != nil && *w.ParentID == parentID }
}

// ItemsBlocked keeps items blocked by status or by blocker references.
func ItemsBlocked() Filter[models.WorkItem] {
	return models.WorkItem.IsBlocked
}

// SprintsInProject keeps sprints of the given project.
func SprintsInProject(projectID string) Filter[models.Sprint] {
	return func(s models.Sprint) bool { return s.ProjectID == projectID }
}

// SprintsWithStatus keeps sprints whose status is one of statuses.
func SprintsWithStatus(statuses ...models.SprintStatus) Filter[models.Sprint] {
	return func(s models.Sprint) bool { return slices.Contains(statuses, s.Status) }
}

// UsersInTeam keeps members of the given team.
func UsersInTeam(teamID string) Filter[models.User] {
	return func(u models.User) bool { return u.TeamID != nil && *u.TeamID == teamID }
}

// UsersWithRole keeps users holding one of roles.
func UsersWithRole(roles ...models.Role) Filter[models.User] {
	return func(u models.User) bool { return slices.Contains(roles, u.Role) }
}

// ProjectsOfTeam keeps projects owned by the given team.
func ProjectsOfTeam(teamID string) Filter[models.Project] {
	return func(p models.Project) bool { return p.TeamID == teamID }
}
