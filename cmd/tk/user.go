package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserShowCmd())
	cmd.AddCommand(newUserUpdateCmd())
	cmd.AddCommand(newUserDeleteCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		configPath string
		in         store.UserInput
		role       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Role, err = parseFlag(role, models.ParseRole); err != nil {
				return err
			}
			return withEnv(configPath, func(e *env) error {
				u, err := e.store.CreateUser(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.ID, u.Email)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&in.ID, "id", "", "explicit user ID (generated when empty)")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", "", "role (admin, scrum_master, team_member, viewer)")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "avatar URL")
	cmd.Flags().StringVar(&in.TeamID, "team", "", "team ID")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				var filters []store.Filter[models.User]
				if teamID != "" {
					filters = append(filters, store.UsersInTeam(teamID))
				}
				out := cmd.OutOrStdout()
				w := newTable(out)
				n := 0
				for u := range e.store.ListUsers(filters...) {
					if n == 0 {
						fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tTEAM")
					}
					n++
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role.Label(), orDash(u.TeamID))
				}
				if n == 0 {
					fmt.Fprintln(out, "No users found.")
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

func newUserShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				u, err := e.store.GetUser(args[0])
				if err != nil {
					return err
				}
				owned := 0
				for range e.store.ListWorkItems(store.ItemsOwnedBy(u.ID)) {
					owned++
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:      %s\n", u.ID)
				fmt.Fprintf(out, "Name:    %s\n", u.Name)
				fmt.Fprintf(out, "Email:   %s\n", u.Email)
				fmt.Fprintf(out, "Role:    %s\n", u.Role.Label())
				fmt.Fprintf(out, "Team:    %s\n", orDash(u.TeamID))
				fmt.Fprintf(out, "Owns:    %d work items\n", owned)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newUserUpdateCmd() *cobra.Command {
	var (
		configPath string
		email      string
		name       string
		role       string
		avatar     string
		team       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user",
		Long:  "Updates the given fields. Pass --team \"\" to remove the user from their team.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.UserPatch{
				Email:  flagPtr(f.Changed("email"), email),
				Name:   flagPtr(f.Changed("name"), name),
				Avatar: flagPtr(f.Changed("avatar"), avatar),
				TeamID: flagPtr(f.Changed("team"), team),
			}
			if f.Changed("role") {
				r, err := models.ParseRole(role)
				if err != nil {
					return err
				}
				patch.Role = &r
			}
			return withEnv(configPath, func(e *env) error {
				u, err := e.store.UpdateUser(args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated user %s\n", u.ID)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&role, "role", "", "new role")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	cmd.Flags().StringVar(&team, "team", "", "new team ID")
	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user that owns no work items and has no team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if err := e.store.DeleteUser(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
