package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/report"
	"github.com/gnolang/specobj/internal/scenario"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-run scenario files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide scenario files or directories")
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner, _, err := newRunner()
		if err != nil {
			logger.Fatal("Failed to initialize runner", zap.Error(err))
		}

		runScenarios(ctx, logger, runner, args, false, "")

		err = scenario.Watch(ctx, logger, args, runner.Matches, func(path string) {
			res := scenario.RunFile(ctx, runner, path)
			fmt.Print(report.FormatResult(res))
		})
		if err != nil {
			logger.Fatal("Watch failed", zap.Error(err))
		}
	},
}
