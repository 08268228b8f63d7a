package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/board"
	"github.com/zulandar/tickora/internal/models"
)

func newBoardCmd() *cobra.Command {
	var (
		configPath string
		columns    string
		sprintID   string
	)

	cmd := &cobra.Command{
		Use:   "board <project>",
		Short: "Show a project's board",
		Long:  "Groups the project's work items into status columns. Columns and WIP limits default to the board section of the config.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				statuses, err := e.cfg.BoardColumns()
				if err != nil {
					return err
				}
				if columns != "" {
					statuses = nil
					for _, part := range strings.Split(columns, ",") {
						st, err := models.ParseStatus(part)
						if err != nil {
							return err
						}
						statuses = append(statuses, st)
					}
				}
				limits, err := e.cfg.WIPLimits()
				if err != nil {
					return err
				}
				cols, err := board.ProjectDefs(e.store, args[0], board.Defs(statuses, limits), board.Options{SprintID: sprintID})
				if err != nil {
					return err
				}
				printBoard(cmd, cols)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated column statuses")
	cmd.Flags().StringVar(&sprintID, "sprint", "", "only items of this sprint")
	return cmd
}

func printBoard(cmd *cobra.Command, cols []board.Column) {
	out := cmd.OutOrStdout()
	for i, col := range cols {
		if i > 0 {
			fmt.Fprintln(out)
		}
		header := fmt.Sprintf("%s (%d)", strings.ToUpper(col.Title), len(col.Items))
		if col.WIPLimit > 0 {
			header = fmt.Sprintf("%s (%d/%d)", strings.ToUpper(col.Title), len(col.Items), col.WIPLimit)
		}
		if col.OverLimit {
			header += " over WIP limit"
		}
		fmt.Fprintln(out, header)
		if len(col.Items) == 0 {
			fmt.Fprintln(out, "  (empty)")
			continue
		}
		w := newTable(out)
		for _, it := range col.Items {
			blocked := ""
			if len(it.BlockerIDs) > 0 {
				blocked = "blocked by " + strings.Join(it.BlockerIDs, ",")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", it.ID, truncate(it.Title, 40), it.Priority.Label(), orDash(it.OwnerID), blocked)
		}
		w.Flush()
	}
}
