package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/store"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team management commands",
	}

	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamListCmd())
	cmd.AddCommand(newTeamShowCmd())
	cmd.AddCommand(newTeamMemberCmd("add-member", "Add a user to a team, moving them from any previous team"))
	cmd.AddCommand(newTeamMemberCmd("remove-member", "Remove a user from a team"))
	cmd.AddCommand(newTeamDeleteCmd())
	return cmd
}

func newTeamCreateCmd() *cobra.Command {
	var (
		configPath string
		in         store.TeamInput
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				t, err := e.store.CreateTeam(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created team %s\n", t.ID)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&in.ID, "id", "", "explicit team ID (generated when empty)")
	cmd.Flags().StringVar(&in.Name, "name", "", "team name (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newTeamListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				out := cmd.OutOrStdout()
				w := newTable(out)
				n := 0
				for t := range e.store.ListTeams() {
					if n == 0 {
						fmt.Fprintln(w, "ID\tNAME\tMEMBERS")
					}
					n++
					fmt.Fprintf(w, "%s\t%s\t%d\n", t.ID, t.Name, len(t.Members))
				}
				if n == 0 {
					fmt.Fprintln(out, "No teams found.")
					return nil
				}
				return w.Flush()
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newTeamShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a team and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				t, err := e.store.GetTeam(args[0])
				if err != nil {
					return err
				}
				var projects []string
				for p := range e.store.ListProjects(store.ProjectsOfTeam(t.ID)) {
					projects = append(projects, p.ID)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", t.ID)
				fmt.Fprintf(out, "Name:      %s\n", t.Name)
				fmt.Fprintf(out, "Members:   %s\n", dash(strings.Join(t.Members, ", ")))
				fmt.Fprintf(out, "Projects:  %s\n", dash(strings.Join(projects, ", ")))
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newTeamMemberCmd(use, short string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <team> <user>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				op := e.store.AddTeamMember
				if use == "remove-member" {
					op = e.store.RemoveTeamMember
				}
				t, err := op(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Team %s members: %s\n", t.ID, dash(strings.Join(t.Members, ", ")))
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newTeamDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a team with no members and no projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if err := e.store.DeleteTeam(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted team %s\n", args[0])
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
