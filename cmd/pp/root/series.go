package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Manage recurring task series",
	}
	cmd.AddCommand(
		newSeriesAddCmd(),
		newSeriesListCmd(),
		newSeriesEnableCmd(true),
		newSeriesEnableCmd(false),
	)
	return cmd
}

func newSeriesAddCmd() *cobra.Command {
	var at string
	var on string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a recurring series",
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
			weekdays, err := engine.ParseWeekdays(on)
			if err != nil {
				return err
			}

			series, err := svc.AddSeries(ctx, args[0], weekdays, tod)
			if err != nil {
				return err
			}

			var labels []string
			for _, d := range series.Weekdays {
				labels = append(labels, engine.WeekdayLabel(d))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconLoop, "Series added"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Title", series.Title))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Days", strings.Join(labels, ", ")))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Time", series.Time))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", ui.Muted.Render(series.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&at, "at", "t", "09:00", "Time of day (HH:MM)")
	cmd.Flags().StringVarP(&on, "on", "o", "mon,tue,wed,thu,fri", "Weekdays (names or 1-7, Sunday=1)")

	return cmd
}

func newSeriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all series",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			state, _, err := svc.Snapshot()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconLoop, "Series"))
			if len(state.Series) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
				return nil
			}
			for _, sr := range state.Series {
				status := ui.Good.Render("active")
				if !sr.Active {
					status = ui.Bad.Render("disabled")
				}
				var labels []string
				for _, d := range sr.Weekdays {
					labels = append(labels, engine.WeekdayLabel(d))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s (%s) %s\n",
					ui.Dim.Render(sr.Time.String()), sr.Title, ui.Muted.Render(strings.Join(labels, ",")), status, ui.Muted.Render(sr.ID))
			}
			return nil
		},
	}
}

func newSeriesEnableCmd(enable bool) *cobra.Command {
	use := "enable <series-id>"
	short := "Re-enable a disabled series"
	if !enable {
		use = "disable <series-id>"
		short = "Soft-disable a series (kept for history)"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("series id is required")
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

			if err := svc.SetSeriesActive(ctx, args[0], enable); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.IconDone+" Updated.")
			return nil
		},
	}
}
