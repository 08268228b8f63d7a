package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Work item management commands",
	}

	cmd.AddCommand(newItemCreateCmd())
	cmd.AddCommand(newItemListCmd())
	cmd.AddCommand(newItemShowCmd())
	cmd.AddCommand(newItemUpdateCmd())
	cmd.AddCommand(newItemDeleteCmd())
	cmd.AddCommand(newItemBlockerCmd("block", "Mark an item as blocked by another"))
	cmd.AddCommand(newItemBlockerCmd("unblock", "Remove a blocker from an item"))
	return cmd
}

func newItemCreateCmd() *cobra.Command {
	var (
		configPath string
		in         store.WorkItemInput
		typ        string
		status     string
		priority   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a work item",
		Long:  "Creates a work item. Type, status and priority default to task, todo and medium.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Type, err = parseFlag(typ, models.ParseWorkItemType); err != nil {
				return err
			}
			if in.Status, err = parseFlag(status, models.ParseStatus); err != nil {
				return err
			}
			if in.Priority, err = parseFlag(priority, models.ParsePriority); err != nil {
				return err
			}
			return withEnv(configPath, func(e *env) error {
				w, err := e.store.CreateWorkItem(in)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created item %s\n", w.ID)
				if len(w.BlockerIDs) > 0 {
					fmt.Fprintf(out, "Blocked by: %s\n", strings.Join(w.BlockerIDs, ", "))
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&in.ID, "id", "", "explicit item ID (generated when empty)")
	cmd.Flags().StringVar(&in.ProjectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&in.SprintID, "sprint", "", "sprint ID")
	cmd.Flags().StringVar(&in.Title, "title", "", "item title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "detailed description")
	cmd.Flags().StringVar(&typ, "type", "", "type (epic, initiative, user_story, bug, task, sub_task)")
	cmd.Flags().StringVar(&status, "status", "", "status (todo, in_progress, in_review, done, blocked)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high, critical)")
	cmd.Flags().StringVar(&in.OwnerID, "owner", "", "owner user ID")
	cmd.Flags().StringVar(&in.ParentID, "parent", "", "parent item ID")
	cmd.Flags().StringSliceVar(&in.BlockerIDs, "blocked-by", nil, "IDs of blocking items")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newItemListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		sprintID   string
		status     string
		owner      string
		blocked    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items",
		Long:  "Lists work items with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters []store.Filter[models.WorkItem]
			if projectID != "" {
				filters = append(filters, store.ItemsInProject(projectID))
			}
			if sprintID != "" {
				filters = append(filters, store.ItemsInSprint(sprintID))
			}
			if owner != "" {
				filters = append(filters, store.ItemsOwnedBy(owner))
			}
			if status != "" {
				var statuses []models.Status
				for _, part := range strings.Split(status, ",") {
					st, err := models.ParseStatus(part)
					if err != nil {
						return err
					}
					statuses = append(statuses, st)
				}
				filters = append(filters, store.ItemsWithStatus(statuses...))
			}
			if blocked {
				filters = append(filters, store.ItemsBlocked())
			}
			return withEnv(configPath, func(e *env) error {
				out := cmd.OutOrStdout()
				w := newTable(out)
				n := 0
				for it := range e.store.ListWorkItems(filters...) {
					if n == 0 {
						fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSTATUS\tPRI\tOWNER\tSPRINT")
					}
					n++
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						it.ID, truncate(it.Title, 40), it.Type, it.Status, it.Priority,
						orDash(it.OwnerID), orDash(it.SprintID))
				}
				if n == 0 {
					fmt.Fprintln(out, "No work items found.")
					return nil
				}
				return w.Flush()
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&projectID, "project", "", "filter by project")
	cmd.Flags().StringVar(&sprintID, "sprint", "", "filter by sprint")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (comma separated)")
	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "only blocked items")
	return cmd
}

func newItemShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a work item with its children and dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				w, err := e.store.GetWorkItem(args[0])
				if err != nil {
					return err
				}
				children, err := e.store.Children(w.ID)
				if err != nil {
					return err
				}
				dependents, err := e.store.Dependents(w.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printItem(out, w)
				if len(children) > 0 {
					fmt.Fprintln(out, "\nChildren:")
					for _, c := range children {
						fmt.Fprintf(out, "  %s  %-12s %s\n", c.ID, c.Status.Label(), c.Title)
					}
				}
				if len(dependents) > 0 {
					fmt.Fprintln(out, "\nBlocks:")
					for _, d := range dependents {
						fmt.Fprintf(out, "  %s  %-12s %s\n", d.ID, d.Status.Label(), d.Title)
					}
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newItemUpdateCmd() *cobra.Command {
	var (
		configPath  string
		projectID   string
		sprintID    string
		typ         string
		title       string
		description string
		status      string
		priority    string
		owner       string
		parent      string
		blockedBy   []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a work item",
		Long: `Updates the given fields of a work item.

Pass an empty value to --sprint, --owner or --parent to clear the reference.
--blocked-by replaces the whole blocker set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.WorkItemPatch{
				ProjectID:   flagPtr(f.Changed("project"), projectID),
				SprintID:    flagPtr(f.Changed("sprint"), sprintID),
				Title:       flagPtr(f.Changed("title"), title),
				Description: flagPtr(f.Changed("description"), description),
				OwnerID:     flagPtr(f.Changed("owner"), owner),
				ParentID:    flagPtr(f.Changed("parent"), parent),
				BlockerIDs:  flagPtr(f.Changed("blocked-by"), blockedBy),
			}
			var err error
			if f.Changed("type") {
				if patch.Type, err = parseRequired(typ, models.ParseWorkItemType); err != nil {
					return err
				}
			}
			if f.Changed("status") {
				if patch.Status, err = parseRequired(status, models.ParseStatus); err != nil {
					return err
				}
			}
			if f.Changed("priority") {
				if patch.Priority, err = parseRequired(priority, models.ParsePriority); err != nil {
					return err
				}
			}
			return withEnv(configPath, func(e *env) error {
				w, err := e.store.UpdateWorkItem(args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated item %s (%s)\n", w.ID, w.Status.Label())
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&projectID, "project", "", "move to project")
	cmd.Flags().StringVar(&sprintID, "sprint", "", "new sprint ID")
	cmd.Flags().StringVar(&typ, "type", "", "new type")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&owner, "owner", "", "new owner user ID")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent item ID")
	cmd.Flags().StringSliceVar(&blockedBy, "blocked-by", nil, "replace blocker IDs")
	return cmd
}

// parseRequired parses a flag value into a pointer.
func parseRequired[T any](s string, parse func(string) (T, error)) (*T, error) {
	v, err := parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func newItemDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a work item with no children and no dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if err := e.store.DeleteWorkItem(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newItemBlockerCmd(use, short string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <item> <blocker>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				op := e.store.AddBlocker
				if use == "unblock" {
					op = e.store.RemoveBlocker
				}
				w, err := op(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %s blocked by: %s\n", w.ID, dash(strings.Join(w.BlockerIDs, ", ")))
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
