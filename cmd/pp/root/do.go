package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newDoCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "do [task-id]",
		Short: "Complete a task (no id: complete the next one due)",
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

			var res *engine.CompleteResult
			if len(args) == 1 {
				res, err = svc.CompleteTask(ctx, args[0], dayKey)
			} else {
				res, err = svc.CompleteNextTask(ctx, dayKey)
			}
			if err = reportJournalErr(err); err != nil {
				return err
			}

			if !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to do — task unknown or already completed."))
				return nil
			}

			timing := ui.Warn.Render("late")
			if res.OnTime {
				timing = ui.Good.Render("on time")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, +%d XP)\n", ui.IconDone, res.Title, timing, res.XPDelta)
			if res.StageAfter > res.StageBefore {
				stage := svc.Stages().Stage(res.StageAfter)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s — your pet is now a %s!\n", ui.IconSparkle, ui.BadgeStageUp, stage.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")

	return cmd
}
