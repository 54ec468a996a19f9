package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newSnoozeCmd() *cobra.Command {
	var day string
	var minutes int

	cmd := &cobra.Command{
		Use:   "snooze [task-id]",
		Short: "Push a task later in the day (no id: the next one due)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dayKey, err := resolveDayKey(svc, day)
			if err != nil {
				return err
			}

			var res *engine.SnoozeResult
			if len(args) == 1 {
				res, err = svc.SnoozeTask(ctx, args[0], dayKey, minutes)
			} else {
				res, err = svc.SnoozeNextTask(ctx, dayKey, minutes)
			}
			if err != nil {
				return err
			}

			if !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to snooze — task unknown or already completed."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s moved to %s\n", ui.IconSnooze, res.Title, res.NewTime)
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Snooze duration (default from config)")

	return cmd
}
