package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weread-sync/core/config"
	"weread-sync/core/logger"
	"weread-sync/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs one sync scope and exits.
var syncCmd = &cobra.Command{
	Use:       "sync [books|notes|readtime|all]",
	Short:     "Run a sync once",
	Long:      `Prepares the workspace and runs the given scope (all by default).`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"books", "notes", "readtime", "all"},
	RunE:      runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	scope, err := pipeline.ParseScope(name)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	runner, err := pipeline.Build(cfg, l)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx, scope)
	if err != nil {
		return err
	}
	l.Info("Sync completed",
		zap.String("scope", string(scope)),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return nil
}
