package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/speclogic"
)

var explainTarget string

var explainCmd = &cobra.Command{
	Use:   "explain [methods...]",
	Short: "Print the behavior formulas of a target",
	Long: `Prints the behavior formulas of a target as indented s-expressions.
Example) specobj explain --target kv get`,
	Run: func(cmd *cobra.Command, args []string) {
		runner, _, err := newRunner()
		if err != nil {
			logger.Fatal("Failed to initialize runner", zap.Error(err))
		}
		target, ok := runner.Target(explainTarget)
		if !ok {
			fmt.Printf("error: unknown target %q (known: %v)\n", explainTarget, runner.Targets())
			os.Exit(1)
		}
		if err := explain(target.Registry, args); err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainTarget, "target", "kv", "Target whose behaviors are printed")
}

func explain(registry *speclogic.Registry, methods []string) error {
	if len(methods) == 0 {
		methods = registry.Methods()
	}
	for _, method := range methods {
		b, ok := registry.Lookup(method)
		if !ok {
			return fmt.Errorf("no behavior for %s", method)
		}
		fmt.Printf("behavior %s (args %s, output %s):\n%s\n\n", method, b.Args, b.Result, speclogic.Pretty(b.Formula))
	}
	return nil
}
