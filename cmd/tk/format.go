package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zulandar/tickora/internal/models"
)

// orDash returns "-" for an empty or nil value.
func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printItem(out io.Writer, w models.WorkItem) {
	fmt.Fprintf(out, "ID:          %s\n", w.ID)
	fmt.Fprintf(out, "Title:       %s\n", w.Title)
	fmt.Fprintf(out, "Type:        %s\n", w.Type.Label())
	fmt.Fprintf(out, "Status:      %s\n", w.Status.Label())
	fmt.Fprintf(out, "Priority:    %s\n", w.Priority.Label())
	fmt.Fprintf(out, "Project:     %s\n", w.ProjectID)
	fmt.Fprintf(out, "Sprint:      %s\n", orDash(w.SprintID))
	fmt.Fprintf(out, "Owner:       %s\n", orDash(w.OwnerID))
	fmt.Fprintf(out, "Parent:      %s\n", orDash(w.ParentID))
	if len(w.BlockerIDs) > 0 {
		fmt.Fprintf(out, "Blocked by:  %s\n", strings.Join(w.BlockerIDs, ", "))
	}
	fmt.Fprintf(out, "Created:     %s\n", w.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Updated:     %s\n", w.UpdatedAt.Format(time.RFC3339))
	if w.Description != "" {
		fmt.Fprintf(out, "\n%s\n", w.Description)
	}
}

// flagPtr returns &v when the flag was set on the command line.
func flagPtr[T any](changed bool, v T) *T {
	if !changed {
		return nil
	}
	return &v
}

// parseFlag parses a flag value when set, leaving the zero value otherwise.
func parseFlag[T any](s string, parse func(string) (T, error)) (T, error) {
	var zero T
	if s == "" {
		return zero, nil
	}
	return parse(s)
}

// parseDate accepts 2006-01-02 or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
