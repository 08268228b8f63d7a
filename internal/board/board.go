// Package board derives kanban columns from work items. Projections are pure
// reads of store state: running one twice against an unchanged store yields
// identical output.
package board

import (
	"cmp"
	"iter"
	"slices"

	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

const kind store.Kind = "board"

// DefaultColumns is the three-column board shown for new projects.
var DefaultColumns = []models.Status{models.StatusToDo, models.StatusInProgress, models.StatusDone}

// AllColumns lists every status in board order.
var AllColumns = slices.Clone(models.AllStatuses)

// Source is the read side of the entity store used by projections.
type Source interface {
	GetProject(id string) (models.Project, error)
	GetSprint(id string) (models.Sprint, error)
	ListWorkItems(filters ...store.Filter[models.WorkItem]) iter.Seq[models.WorkItem]
}

// ColumnDef configures one board column. A positive WIPLimit marks the
// column over limit when it holds more items.
type ColumnDef struct {
	Status   models.Status `json:"status"`
	Title    string        `json:"title,omitempty"`
	WIPLimit int           `json:"wip_limit,omitempty"`
}

// Column is one projected board column.
type Column struct {
	Status    models.Status     `json:"status"`
	Title     string            `json:"title"`
	WIPLimit  int               `json:"wip_limit,omitempty"`
	OverLimit bool              `json:"over_limit"`
	Items     []models.WorkItem `json:"items"`
}

// Options narrows a projection.
type Options struct {
	// SprintID restricts the board to items of one sprint of the project.
	SprintID string
}

// Defs builds column definitions for statuses, attaching WIP limits keyed
// by status.
func Defs(statuses []models.Status, wipLimits map[models.Status]int) []ColumnDef {
	defs := make([]ColumnDef, 0, len(statuses))
	for _, st := range statuses {
		defs = append(defs, ColumnDef{Status: st, WIPLimit: wipLimits[st]})
	}
	return defs
}

// Project returns one column per status, in the given order, holding the
// project's items in that status. Items whose status has no column are
// omitted.
func Project(src Source, projectID string, columns []models.Status) ([]Column, error) {
	return ProjectDefs(src, projectID, Defs(columns, nil), Options{})
}

// ProjectDefs is Project with titles, WIP limits and sprint scoping.
func ProjectDefs(src Source, projectID string, defs []ColumnDef, opts Options) ([]Column, error) {
	if _, err := src.GetProject(projectID); err != nil {
		return nil, err
	}
	if err := checkDefs(projectID, defs); err != nil {
		return nil, err
	}

	filters := []store.Filter[models.WorkItem]{store.ItemsInProject(projectID)}
	if opts.SprintID != "" {
		sp, err := src.GetSprint(opts.SprintID)
		if err != nil {
			return nil, err
		}
		if sp.ProjectID != projectID {
			return nil, store.Invalidf(kind, projectID, "sprint %s belongs to project %s", sp.ID, sp.ProjectID)
		}
		filters = append(filters, store.ItemsInSprint(opts.SprintID))
	}

	byStatus := make(map[models.Status][]models.WorkItem, len(defs))
	for w := range src.ListWorkItems(filters...) {
		byStatus[w.Status] = append(byStatus[w.Status], w)
	}

	cols := make([]Column, 0, len(defs))
	for _, d := range defs {
		items := byStatus[d.Status]
		if items == nil {
			items = []models.WorkItem{}
		}
		slices.SortFunc(items, compareItems)
		title := d.Title
		if title == "" {
			title = d.Status.Label()
		}
		cols = append(cols, Column{
			Status:    d.Status,
			Title:     title,
			WIPLimit:  d.WIPLimit,
			OverLimit: d.WIPLimit > 0 && len(items) > d.WIPLimit,
			Items:     items,
		})
	}
	return cols, nil
}

func checkDefs(projectID string, defs []ColumnDef) error {
	seen := make(map[models.Status]bool, len(defs))
	for _, d := range defs {
		if !d.Status.Valid() {
			return store.Invalidf(kind, projectID, "invalid column status %q", d.Status)
		}
		if seen[d.Status] {
			return store.Invalidf(kind, projectID, "duplicate column %q", d.Status)
		}
		if d.WIPLimit < 0 {
			return store.Invalidf(kind, projectID, "column %q: wip limit must not be negative", d.Status)
		}
		seen[d.Status] = true
	}
	return nil
}

// compareItems orders most recently updated first, then by id.
func compareItems(a, b models.WorkItem) int {
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
