package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/standup"
)

func newStandupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Daily standup commands",
	}

	cmd.AddCommand(newStandupSubmitCmd())
	cmd.AddCommand(newStandupListCmd())
	cmd.AddCommand(newStandupDigestCmd())
	return cmd
}

func newStandupListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		since      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved standup responses of a project",
		Long:  "Lists standup responses oldest first. --since 0 shows the whole history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if _, err := e.store.GetProject(projectID); err != nil {
					return err
				}
				var from time.Time
				if since > 0 {
					from = time.Now().UTC().Add(-since)
				}
				responses, err := standup.NewLog(e.db).Since(cmd.Context(), projectID, from)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(responses) == 0 {
					fmt.Fprintln(out, "No standups found.")
					return nil
				}
				w := newTable(out)
				fmt.Fprintln(w, "SUBMITTED\tUSER\tYESTERDAY\tTODAY\tBLOCKERS")
				for _, r := range responses {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.SubmittedAt.Format("2006-01-02 15:04"), r.UserID,
						dash(truncate(r.Yesterday, 30)), dash(truncate(r.Today, 30)), dash(truncate(r.Blockers, 30)))
				}
				return w.Flush()
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	cmd.Flags().DurationVar(&since, "since", 0, "only responses submitted within this window")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStandupSubmitCmd() *cobra.Command {
	var (
		configPath string
		resp       standup.Response
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a standup response",
		Long: `Records a standup response and moves the work items it mentions.

Items mentioned in --yesterday next to "done" or "completed" move to Done.
Items mentioned in --today next to "started" or "in progress" move to In Progress.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				p := standup.NewProcessor(e.store, standup.Options{Log: standup.NewLog(e.db), Logger: e.logger})
				changed, err := p.Process(cmd.Context(), resp)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recorded standup for %s\n", resp.UserID)
				for _, w := range changed {
					fmt.Fprintf(out, "  %s → %s  %s\n", w.ID, w.Status.Label(), w.Title)
				}
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&resp.UserID, "user", "", "user ID (required)")
	cmd.Flags().StringVar(&resp.ProjectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&resp.Yesterday, "yesterday", "", "what you did yesterday")
	cmd.Flags().StringVar(&resp.Today, "today", "", "what you plan today")
	cmd.Flags().StringVar(&resp.Blockers, "blockers", "", "anything blocking you")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStandupDigestCmd() *cobra.Command {
	var (
		configPath string
		since      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "digest <sprint>",
		Short: "Print the standup digest of a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				sp, err := e.store.GetSprint(args[0])
				if err != nil {
					return err
				}
				log := standup.NewLog(e.db)
				responses, err := log.Since(cmd.Context(), sp.ProjectID, time.Now().UTC().Add(-since))
				if err != nil {
					return err
				}
				p := standup.NewProcessor(e.store, standup.Options{Log: log, Logger: e.logger})
				text, err := p.Digest(cmd.Context(), sp.ID, responses)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "include responses submitted within this window")
	return cmd
}
