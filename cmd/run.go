package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/metrics"
	"github.com/gnolang/specobj/internal/monitor"
	"github.com/gnolang/specobj/internal/report"
	"github.com/gnolang/specobj/internal/scenario"
)

var (
	policyFlag  string
	jsonOutput  bool
	outPath     string
	showMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run scenario files against their behaviors",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide scenario files or directories")
			os.Exit(1)
		}

		ctx, cancel := runContext()
		defer cancel()

		runner, recorder, err := newRunner()
		if err != nil {
			logger.Fatal("Failed to initialize runner", zap.Error(err))
		}

		failed := runScenarios(ctx, logger, runner, args, jsonOutput, outPath)
		if showMetrics {
			printMetrics(recorder)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&policyFlag, "policy", "", "Violation policy: halt or continue (default from config)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	runCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print check counts by method and verdict")
}

func runContext() (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

func newRunner() (*scenario.Runner, *metrics.Recorder, error) {
	name := cfg.Policy
	if policyFlag != "" {
		name = policyFlag
	}
	policy, err := monitor.ParsePolicy(name)
	if err != nil {
		return nil, nil, err
	}

	report.SetColor(cfg.Color)

	recorder := metrics.NewRecorder()
	runner, err := scenario.NewRunner(
		scenario.WithLogger(logger),
		scenario.WithPolicy(policy),
		scenario.WithRecorder(recorder),
		scenario.WithExtensions(cfg.Extensions),
	)
	if err != nil {
		return nil, nil, err
	}
	return runner, recorder, nil
}

// runScenarios runs paths and prints the results. It reports whether any
// scenario failed.
func runScenarios(ctx context.Context, logger *zap.Logger, runner *scenario.Runner, paths []string, isJSON bool, jsonPath string) bool {
	results, err := scenario.RunPaths(ctx, logger, runner, paths, os.Stderr)
	if err != nil {
		logger.Error("Error running scenarios", zap.Error(err))
		return true
	}

	printResults(logger, results, isJSON, jsonPath)

	for _, res := range results {
		if res.Failed() {
			return true
		}
	}
	return false
}

func printResults(logger *zap.Logger, results []scenario.Result, isJSON bool, jsonPath string) {
	if !isJSON {
		fmt.Print(report.FormatResults(results))
		return
	}

	d, err := report.FormatJSON(results)
	if err != nil {
		logger.Error("Error marshalling results to JSON", zap.Error(err))
		return
	}
	if jsonPath == "" {
		fmt.Println(string(d))
		return
	}
	if err := os.WriteFile(jsonPath, d, 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}

func printMetrics(recorder *metrics.Recorder) {
	counts, err := recorder.Summary()
	if err != nil {
		logger.Error("Error gathering metrics", zap.Error(err))
		return
	}
	for _, c := range counts {
		fmt.Printf("%-10s %-10s %6.0f\n", c.Method, c.Verdict, c.Value)
	}
}
