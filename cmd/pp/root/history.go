package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/config"
	"petprogress/internal/storage"
	"petprogress/internal/timekey"
	"petprogress/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent completions and closeouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir := cfg.DataDir
			if dir == "" {
				dir, err = storage.DefaultDataDir()
				if err != nil {
					return err
				}
			}
			if !cfg.Journal {
				return errors.New("history journal is disabled (PETPROGRESS_JOURNAL=false)")
			}

			journal, err := storage.OpenJournal(ctx, dir)
			if err != nil {
				return err
			}
			defer journal.Close()

			entries, err := journal.Recent(ctx, limit)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			todayKey := timekey.DayKey(time.Now(), loc)
			checks, err := journal.CountByDay(ctx, todayKey)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, "History"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Checks on "+todayKey, checks))
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(empty)"))
				return nil
			}
			for _, e := range entries {
				when := ui.Dim.Render(e.RecordedAt.Format("2006-01-02 15:04"))
				switch e.Kind {
				case storage.JournalKindCheck:
					timing := ui.Warn.Render("late")
					if e.OnTime {
						timing = ui.Good.Render("on time")
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %q (%s, %+d XP)\n", when, ui.IconDone, e.Title, timing, e.XPDelta)
				case storage.JournalKindMiss:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s missed %q (%+d XP)\n", when, ui.IconWarn, e.Title, e.XPDelta)
				case storage.JournalKindCloseout:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s closeout %s (%+d XP, stage %d)\n", when, ui.IconClock, e.DayKey, e.XPDelta, e.StageAfter)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max entries to show")

	return cmd
}
