package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var (
		configPath string
		in         store.ProjectInput
		typ        string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Type, err = parseFlag(typ, models.ParseProjectType); err != nil {
				return err
			}
			return withEnv(configPath, func(e *env) error {
				p, err := e.store.CreateProject(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.ID, p.Type.Label())
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&in.ID, "id", "", "explicit project ID (generated when empty)")
	cmd.Flags().StringVar(&in.Name, "name", "", "project name (required)")
	cmd.Flags().StringVar(&typ, "type", "", "project type (scrum, kanban)")
	cmd.Flags().StringVar(&in.TeamID, "team", "", "owning team ID (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("team")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				var filters []store.Filter[models.Project]
				if teamID != "" {
					filters = append(filters, store.ProjectsOfTeam(teamID))
				}
				out := cmd.OutOrStdout()
				w := newTable(out)
				n := 0
				for p := range e.store.ListProjects(filters...) {
					if n == 0 {
						fmt.Fprintln(w, "ID\tNAME\tTYPE\tTEAM")
					}
					n++
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Type.Label(), p.TeamID)
				}
				if n == 0 {
					fmt.Fprintln(out, "No projects found.")
					return nil
				}
				return w.Flush()
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&teamID, "team", "", "filter by team")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				p, err := e.store.GetProject(args[0])
				if err != nil {
					return err
				}
				active, ok, err := e.store.ActiveSprint(p.ID)
				if err != nil {
					return err
				}
				counts := make(map[models.Status]int)
				total := 0
				for w := range e.store.ListWorkItems(store.ItemsInProject(p.ID)) {
					counts[w.Status]++
					total++
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", p.ID)
				fmt.Fprintf(out, "Name:     %s\n", p.Name)
				fmt.Fprintf(out, "Type:     %s\n", p.Type.Label())
				fmt.Fprintf(out, "Team:     %s\n", p.TeamID)
				if ok {
					fmt.Fprintf(out, "Sprint:   %s (%s, ends %s)\n", active.Name, active.ID, formatDate(active.EndDate))
				} else {
					fmt.Fprintln(out, "Sprint:   -")
				}
				fmt.Fprintf(out, "Items:    %d\n", total)
				for _, st := range models.AllStatuses {
					if counts[st] > 0 {
						fmt.Fprintf(out, "  %-12s %d\n", st.Label(), counts[st])
					}
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project with no sprints and no work items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if err := e.store.DeleteProject(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
