package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/specobj/internal/config"
)

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:              "specobj [paths...]",
	Short:            "specobj - check recorded call sequences against declarative behaviors",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'specobj' is entered
			_ = cmd.Help()
			return
		}
		// Format: specobj [path1 path2 ...] => behaves like the run subcommand
		runCmd.Run(runCmd, args)
	},
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for the whole run (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(explainCmd)
}

func setup(cmd *cobra.Command) error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	// init writes the file, so a broken one must not block it
	if cmd == initCmd {
		return nil
	}

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if timeout == 0 {
		timeout = cfg.Timeout
	}
	return nil
}
