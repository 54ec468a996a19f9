package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newCloseoutCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "closeout",
		Short: "Run the end-of-day evaluation for a day",
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
			res, err := svc.RunDailyCloseout(ctx, dayKey)
			if err = reportJournalErr(err); err != nil {
				return err
			}

			if !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Day already closed out."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconClock, "Closeout "+res.DayKey))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Completed", fmt.Sprintf("%d/%d (%.0f%%)", res.Completed, res.Total, res.Rate*100)))
			if res.Misses > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Misses charged", res.Misses))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP change", fmt.Sprintf("%+d", res.XPDelta)))
			switch {
			case res.StageAfter > res.StageBefore:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s — stage %d → %d\n", ui.IconSparkle, ui.BadgeStageUp, res.StageBefore, res.StageAfter)
			case res.StageAfter < res.StageBefore:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s — stage %d → %d\n", ui.IconWarn, ui.BadgeStageDown, res.StageBefore, res.StageAfter)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")

	return cmd
}
