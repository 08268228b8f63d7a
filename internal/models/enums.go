package models

import (
	"fmt"
	"strings"
)

// Role is a user's permission level within Tickora.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleScrumMaster Role = "scrum_master"
	RoleTeamMember  Role = "team_member"
	RoleViewer      Role = "viewer"
)

// ProjectType selects the delivery process of a project.
type ProjectType string

const (
	ProjectScrum  ProjectType = "scrum"
	ProjectKanban ProjectType = "kanban"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// WorkItemType classifies a work item.
type WorkItemType string

const (
	TypeEpic       WorkItemType = "epic"
	TypeInitiative WorkItemType = "initiative"
	TypeUserStory  WorkItemType = "user_story"
	TypeBug        WorkItemType = "bug"
	TypeTask       WorkItemType = "task"
	TypeSubTask    WorkItemType = "sub_task"
)

// Status is the user-declared progress state of a work item.
type Status string

const (
	StatusToDo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Priority orders work items by urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var (
	roleLabels = map[Role]string{
		RoleAdmin:       "Admin",
		RoleScrumMaster: "Scrum Master",
		RoleTeamMember:  "Team Member",
		RoleViewer:      "Viewer",
	}
	projectTypeLabels = map[ProjectType]string{
		ProjectScrum:  "Scrum",
		ProjectKanban: "Kanban",
	}
	sprintStatusLabels = map[SprintStatus]string{
		SprintPlanned:   "Planned",
		SprintActive:    "Active",
		SprintCompleted: "Completed",
	}
	workItemTypeLabels = map[WorkItemType]string{
		TypeEpic:       "Epic",
		TypeInitiative: "Initiative",
		TypeUserStory:  "User Story",
		TypeBug:        "Bug",
		TypeTask:       "Task",
		TypeSubTask:    "Sub-task",
	}
	statusLabels = map[Status]string{
		StatusToDo:       "To Do",
		StatusInProgress: "In Progress",
		StatusInReview:   "In Review",
		StatusDone:       "Done",
		StatusBlocked:    "Blocked",
	}
	priorityLabels = map[Priority]string{
		PriorityLow:      "Low",
		PriorityMedium:   "Medium",
		PriorityHigh:     "High",
		PriorityCritical: "Critical",
	}
)

// AllStatuses lists every work item status in board order.
var AllStatuses = []Status{StatusToDo, StatusInProgress, StatusInReview, StatusDone, StatusBlocked}

func (r Role) Valid() bool         { return hasLabel(roleLabels, r) }
func (t ProjectType) Valid() bool  { return hasLabel(projectTypeLabels, t) }
func (s SprintStatus) Valid() bool { return hasLabel(sprintStatusLabels, s) }
func (t WorkItemType) Valid() bool { return hasLabel(workItemTypeLabels, t) }
func (s Status) Valid() bool       { return hasLabel(statusLabels, s) }
func (p Priority) Valid() bool     { return hasLabel(priorityLabels, p) }

// Label returns the display name used by the web client.
func (r Role) Label() string         { return labelOr(roleLabels, r) }
func (t ProjectType) Label() string  { return labelOr(projectTypeLabels, t) }
func (s SprintStatus) Label() string { return labelOr(sprintStatusLabels, s) }
func (t WorkItemType) Label() string { return labelOr(workItemTypeLabels, t) }
func (s Status) Label() string       { return labelOr(statusLabels, s) }
func (p Priority) Label() string     { return labelOr(priorityLabels, p) }

// ParseRole accepts a wire value or display label ("Scrum Master", "scrum_master").
func ParseRole(s string) (Role, error) { return parseEnum("role", roleLabels, s) }

// ParseProjectType accepts a wire value or display label.
func ParseProjectType(s string) (ProjectType, error) {
	return parseEnum("project type", projectTypeLabels, s)
}

// ParseSprintStatus accepts a wire value or display label.
func ParseSprintStatus(s string) (SprintStatus, error) {
	return parseEnum("sprint status", sprintStatusLabels, s)
}

// ParseWorkItemType accepts a wire value or display label ("User Story", "Sub-task").
func ParseWorkItemType(s string) (WorkItemType, error) {
	return parseEnum("work item type", workItemTypeLabels, s)
}

// ParseStatus accepts a wire value or display label ("To Do", "todo", "ToDo").
func ParseStatus(s string) (Status, error) { return parseEnum("status", statusLabels, s) }

// ParsePriority accepts a wire value or display label.
func ParsePriority(s string) (Priority, error) {
	return parseEnum("priority", priorityLabels, s)
}

func hasLabel[T ~string](labels map[T]string, v T) bool {
	_, ok := labels[v]
	return ok
}

func labelOr[T ~string](labels map[T]string, v T) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}

// normalizeEnum folds "In Progress", "in-progress", "InProgress" and
// "in_progress" to the same key.
func normalizeEnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseEnum[T ~string](kind string, labels map[T]string, s string) (T, error) {
	key := normalizeEnum(s)
	for v, label := range labels {
		if key == normalizeEnum(string(v)) || key == normalizeEnum(label) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, s)
}
