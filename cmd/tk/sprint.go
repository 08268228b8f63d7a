package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/history"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func newSprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Sprint management commands",
	}

	cmd.AddCommand(newSprintCreateCmd())
	cmd.AddCommand(newSprintListCmd())
	cmd.AddCommand(newSprintShowCmd())
	cmd.AddCommand(newSprintUpdateCmd())
	cmd.AddCommand(newSprintDeleteCmd())
	cmd.AddCommand(newSprintMetricsCmd())
	return cmd
}

func newSprintCreateCmd() *cobra.Command {
	var (
		configPath string
		in         store.SprintInput
		start      string
		end        string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if in.EndDate, err = parseDate(end); err != nil {
				return err
			}
			if in.Status, err = parseFlag(status, models.ParseSprintStatus); err != nil {
				return err
			}
			return withEnv(configPath, func(e *env) error {
				sp, err := e.store.CreateSprint(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created sprint %s (%s)\n", sp.ID, sp.Status.Label())
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&in.ID, "id", "", "explicit sprint ID (generated when empty)")
	cmd.Flags().StringVar(&in.ProjectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "sprint name (required)")
	cmd.Flags().StringVar(&in.Goal, "goal", "", "sprint goal")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "end date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&status, "status", "", "status (planned, active, completed)")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func newSprintListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters []store.Filter[models.Sprint]
			if projectID != "" {
				filters = append(filters, store.SprintsInProject(projectID))
			}
			if status != "" {
				st, err := models.ParseSprintStatus(status)
				if err != nil {
					return err
				}
				filters = append(filters, store.SprintsWithStatus(st))
			}
			return withEnv(configPath, func(e *env) error {
				out := cmd.OutOrStdout()
				w := newTable(out)
				n := 0
				for sp := range e.store.ListSprints(filters...) {
					if n == 0 {
						fmt.Fprintln(w, "ID\tNAME\tPROJECT\tSTATUS\tSTART\tEND")
					}
					n++
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						sp.ID, truncate(sp.Name, 40), sp.ProjectID, sp.Status.Label(),
						formatDate(sp.StartDate), formatDate(sp.EndDate))
				}
				if n == 0 {
					fmt.Fprintln(out, "No sprints found.")
					return nil
				}
				return w.Flush()
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&projectID, "project", "", "filter by project")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func newSprintShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				sp, err := e.store.GetSprint(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", sp.ID)
				fmt.Fprintf(out, "Name:     %s\n", sp.Name)
				fmt.Fprintf(out, "Project:  %s\n", sp.ProjectID)
				fmt.Fprintf(out, "Status:   %s\n", sp.Status.Label())
				fmt.Fprintf(out, "Dates:    %s → %s\n", formatDate(sp.StartDate), formatDate(sp.EndDate))
				if sp.Goal != "" {
					fmt.Fprintf(out, "Goal:     %s\n", sp.Goal)
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newSprintUpdateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		goal       string
		start      string
		end        string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.SprintPatch{
				Name: flagPtr(f.Changed("name"), name),
				Goal: flagPtr(f.Changed("goal"), goal),
			}
			if f.Changed("start") {
				t, err := parseDate(start)
				if err != nil {
					return err
				}
				patch.StartDate = &t
			}
			if f.Changed("end") {
				t, err := parseDate(end)
				if err != nil {
					return err
				}
				patch.EndDate = &t
			}
			if f.Changed("status") {
				st, err := models.ParseSprintStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}
			return withEnv(configPath, func(e *env) error {
				sp, err := e.store.UpdateSprint(args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated sprint %s (%s)\n", sp.ID, sp.Status.Label())
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&goal, "goal", "", "new goal")
	cmd.Flags().StringVar(&start, "start", "", "new start date YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "new end date YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "new status (planned, active, completed)")
	return cmd
}

func newSprintDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sprint with no work items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if err := e.store.DeleteSprint(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted sprint %s\n", args[0])
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newSprintMetricsCmd() *cobra.Command {
	var (
		configPath string
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "metrics <id>",
		Short: "Show sprint health metrics",
		Long:  "Shows completion and blocked counts, with the week-over-week change when a snapshot from a week ago exists.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				rec := history.NewRecorder(e.db, e.store, nil, e.logger)
				now := time.Now().UTC()
				rep, err := rec.Report(cmd.Context(), args[0], now)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Sprint:      %s\n", rep.SprintID)
				fmt.Fprintf(out, "Completion:  %d%% (%d/%d done)", rep.CompletionPct, rep.DoneItems, rep.TotalItems)
				if rep.Delta != nil {
					fmt.Fprintf(out, "  %+d%% / %+d done vs last week", rep.Delta.CompletionPct, rep.Delta.DoneItems)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Blocked:     %d (%d critical; %d by status, %d by dependency)\n",
					rep.BlockedCount, rep.CriticalBlockedCount, rep.StatusBlocked, rep.DependencyBlocked)
				fmt.Fprintf(out, "Days left:   %d\n", rep.DaysRemaining(now))
				if record {
					snap, err := rec.Record(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Recorded snapshot %d\n", snap.ID)
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&record, "record", false, "also store a metrics snapshot")
	return cmd
}
