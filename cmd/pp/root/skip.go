package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newSkipCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "skip <series-id>",
		Short: "Skip one day's occurrence of a series",
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

			dayKey, err := resolveDayKey(svc, day)
			if err != nil {
				return err
			}
			if err := svc.SkipOccurrence(ctx, args[0], dayKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Skipped for %s.\n", ui.IconDone, dayKey)
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day key (YYYY-MM-DD, default today)")

	return cmd
}
