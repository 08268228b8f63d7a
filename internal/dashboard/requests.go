package dashboard

import (
	"strings"
	"time"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

// Request bodies. Enum fields accept wire values or display labels
// ("In Progress", "in_progress").

type userRequest struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	TeamID string `json:"team_id"`
}

type userPatchRequest struct {
	Email  *string `json:"email"`
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Avatar *string `json:"avatar"`
	TeamID *string `json:"team_id"`
}

type teamRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type teamPatchRequest struct {
	Name *string `json:"name"`
}

type projectRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	TeamID string `json:"team_id"`
}

type projectPatchRequest struct {
	Name   *string `json:"name"`
	Type   *string `json:"type"`
	TeamID *string `json:"team_id"`
}

type sprintRequest struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

type sprintPatchRequest struct {
	Name      *string `json:"name"`
	Goal      *string `json:"goal"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
}

type itemRequest struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	SprintID    string   `json:"sprint_id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	OwnerID     string   `json:"owner_id"`
	ParentID    string   `json:"parent_id"`
	BlockerIDs  []string `json:"blocker_ids"`
}

type itemPatchRequest struct {
	ProjectID   *string   `json:"project_id"`
	SprintID    *string   `json:"sprint_id"`
	Type        *string   `json:"type"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	OwnerID     *string   `json:"owner_id"`
	ParentID    *string   `json:"parent_id"`
	BlockerIDs  *[]string `json:"blocker_ids"`
}

// parseOptional parses s with parse, leaving the zero value for "".
func parseOptional[T any](s string, parse func(string) (T, error)) (T, error) {
	var zero T
	if strings.TrimSpace(s) == "" {
		return zero, nil
	}
	v, err := parse(s)
	if err != nil {
		return zero, store.Invalidf("request", "", "%v", err)
	}
	return v, nil
}

// parsePtr parses an optional patch field.
func parsePtr[T any](s *string, parse func(string) (T, error)) (*T, error) {
	if s == nil {
		return nil, nil
	}
	v, err := parse(*s)
	if err != nil {
		return nil, store.Invalidf("request", "", "%v", err)
	}
	return &v, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates (2006-01-02, UTC).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, store.Invalidf("request", "", "invalid date %q", s)
	}
	return t, nil
}

func (r userRequest) input() (store.UserInput, error) {
	role, err := parseOptional(r.Role, models.ParseRole)
	if err != nil {
		return store.UserInput{}, err
	}
	return store.UserInput{ID: r.ID, Email: r.Email, Name: r.Name, Role: role, Avatar: r.Avatar, TeamID: r.TeamID}, nil
}

func (r userPatchRequest) patch() (store.UserPatch, error) {
	role, err := parsePtr(r.Role, models.ParseRole)
	if err != nil {
		return store.UserPatch{}, err
	}
	return store.UserPatch{Email: r.Email, Name: r.Name, Role: role, Avatar: r.Avatar, TeamID: r.TeamID}, nil
}

func (r projectRequest) input() (store.ProjectInput, error) {
	typ, err := parseOptional(r.Type, models.ParseProjectType)
	if err != nil {
		return store.ProjectInput{}, err
	}
	return store.ProjectInput{ID: r.ID, Name: r.Name, Type: typ, TeamID: r.TeamID}, nil
}

func (r projectPatchRequest) patch() (store.ProjectPatch, error) {
	typ, err := parsePtr(r.Type, models.ParseProjectType)
	if err != nil {
		return store.ProjectPatch{}, err
	}
	return store.ProjectPatch{Name: r.Name, Type: typ, TeamID: r.TeamID}, nil
}

func (r sprintRequest) input() (store.SprintInput, error) {
	in := store.SprintInput{ID: r.ID, ProjectID: r.ProjectID, Name: r.Name, Goal: r.Goal}
	var err error
	if in.StartDate, err = parseOptional(r.StartDate, parseDate); err != nil {
		return in, err
	}
	if in.EndDate, err = parseOptional(r.EndDate, parseDate); err != nil {
		return in, err
	}
	if in.Status, err = parseOptional(r.Status, models.ParseSprintStatus); err != nil {
		return in, err
	}
	return in, nil
}

func (r sprintPatchRequest) patch() (store.SprintPatch, error) {
	p := store.SprintPatch{Name: r.Name, Goal: r.Goal}
	var err error
	if p.StartDate, err = parsePtr(r.StartDate, parseDate); err != nil {
		return p, err
	}
	if p.EndDate, err = parsePtr(r.EndDate, parseDate); err != nil {
		return p, err
	}
	if p.Status, err = parsePtr(r.Status, models.ParseSprintStatus); err != nil {
		return p, err
	}
	return p, nil
}

func (r itemRequest) input() (store.WorkItemInput, error) {
	in := store.WorkItemInput{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		SprintID:    r.SprintID,
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		ParentID:    r.ParentID,
		BlockerIDs:  r.BlockerIDs,
	}
	var err error
	if in.Type, err = parseOptional(r.Type, models.ParseWorkItemType); err != nil {
		return in, err
	}
	if in.Status, err = parseOptional(r.Status, models.ParseStatus); err != nil {
		return in, err
	}
	if in.Priority, err = parseOptional(r.Priority, models.ParsePriority); err != nil {
		return in, err
	}
	return in, nil
}

func (r itemPatchRequest) patch() (store.WorkItemPatch, error) {
	p := store.WorkItemPatch{
		ProjectID:   r.ProjectID,
		SprintID:    r.SprintID,
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		ParentID:    r.ParentID,
		BlockerIDs:  r.BlockerIDs,
	}
	var err error
	if p.Type, err = parsePtr(r.Type, models.ParseWorkItemType); err != nil {
		return p, err
	}
	if p.Status, err = parsePtr(r.Status, models.ParseStatus); err != nil {
		return p, err
	}
	if p.Priority, err = parsePtr(r.Priority, models.ParsePriority); err != nil {
		return p, err
	}
	return p, nil
}
