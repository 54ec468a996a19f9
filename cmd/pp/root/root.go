package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "pp",
	Short:         "PetProgress — a task scheduler that grows a pet",
	Long:          "PetProgress is a local-first task scheduler: completing tasks on time evolves a virtual pet through stages, missing them regresses it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newSeriesCmd(),
		newTodayCmd(),
		newDoCmd(),
		newSnoozeCmd(),
		newSkipCmd(),
		newCloseoutCmd(),
		newStatusCmd(),
		newBoardCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
