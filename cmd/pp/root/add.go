package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newAddCmd() *cobra.Command {
	var at string
	var day string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a one-off task for a day",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tod, err := engine.ParseTimeOfDay(at)
			if err != nil {
				return err
			}
			dayKey, err := resolveDayKey(svc, day)
			if err != nil {
				return err
			}

			task, err := svc.AddOneOff(ctx, args[0], dayKey, tod)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlus, "Task added"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Title", task.Title))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Day", task.DayKey))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Time", task.Time))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", ui.Muted.Render(task.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&at, "at", "t", "09:00", "Time of day (HH:MM)")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")

	return cmd
}
