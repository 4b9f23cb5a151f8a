package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/medtrans/internal/cli"
	"codeberg.org/snonux/medtrans/internal/llm/factory"
	"codeberg.org/snonux/medtrans/internal/logging"
	"codeberg.org/snonux/medtrans/internal/models"
	"codeberg.org/snonux/medtrans/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	logger, err := logging.New(flags.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cli.ResolveConfig(flags)
	if errors.Is(err, cli.ErrMissingAPIKey) {
		logger.Error("missing API key, set it in the environment or a .env file", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	if err != nil {
		return err
	}
	cfg.Provider.Logger = logger

	completer, lister, err := factory.New(ctx, cfg.Provider)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	// Handle --list-models flag
	if flags.ListModels {
		return models.NewLister(completer.Name(), lister).ListAvailableModels(ctx, flags.ModelFilter)
	}

	// Failures are logged by the processor and do not change the exit code.
	proc := processor.NewProcessor(cfg, completer, logger)
	_, _ = proc.ProcessFile(ctx)
	return nil
}
