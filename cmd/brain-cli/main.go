package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/tobot/internal/app"
	"github.com/cognicore/tobot/internal/trainq"
	"github.com/cognicore/tobot/pkg/tobot/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "brain-cli",
	Short:        "Inspect and train the tobot brain",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if verbose {
			var err error
			if logger, err = app.NewLogger(true); err != nil {
				return err
			}
			defer logger.Sync()
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintln(cmd.OutOrStdout(), "Loading TOBOT's brain..")
		engine, err := app.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer engine.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Done.")

		queue := trainq.New(cfg.TrainQueue, logger.Named("trainq"))
		shell := NewShell(engine.Bot, queue, cfg.Lookup.ConfidenceRequired, cmd.InOrStdin(), cmd.OutOrStdout()).
			WithTextStats(engine.Components.Stats())
		return shell.Run(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
