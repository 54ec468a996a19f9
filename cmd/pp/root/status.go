package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pet and today's progress",
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
			tasks, dayKey, err := svc.ListToday()
			if err != nil {
				return err
			}

			stages := svc.Stages()
			if err := stages.CheckIndex(state.Pet.StageIndex); err != nil {
				return err
			}
			stage := stages.Stage(state.Pet.StageIndex)

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPet, "Pet Status"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Stage", fmt.Sprintf("%d — %s", stage.Index, stage.Name)))
			if state.Pet.StageIndex < stages.Last() {
				next := stages.Threshold(state.Pet.StageIndex + 1)
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("%d/%d %s", state.Pet.StageXP, next, ui.XPBar(state.Pet.StageXP, next, 20))))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("%d %s", state.Pet.StageXP, ui.Gold.Render("(max stage)"))))
			}
			if state.Pet.LastCloseoutDayKey != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Last closeout", state.Pet.LastCloseoutDayKey))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "")

			done := 0
			for _, t := range tasks {
				if t.Completed {
					done++
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconCalendar+" "+dayKey))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Tasks", fmt.Sprintf("%d/%d done", done, len(tasks))))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Grace window", fmt.Sprintf("±%d min", state.Grace())))
			if state.ResetTime != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Day resets at", state.ResetTime))
			}
			return nil
		},
	}

	return cmd
}
