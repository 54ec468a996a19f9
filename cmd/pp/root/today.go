package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newTodayCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "List today's tasks",
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
			tasks, err := svc.ListDay(dayKey)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconCalendar, dayKey))
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no tasks)"))
				return nil
			}
			done := 0
			for _, t := range tasks {
				if t.Completed {
					done++
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.TaskLine(t.Time.String(), t.Title, t.Completed))
				fmt.Fprintln(cmd.OutOrStdout(), "    "+ui.Muted.Render(t.ID))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d done\n", done, len(tasks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")

	return cmd
}
