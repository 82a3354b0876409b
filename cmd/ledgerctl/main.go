// Package main provides ledgerctl, the operator CLI for the project ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/app"
	"github.com/fixora/projectledger/internal/config"
	"github.com/fixora/projectledger/internal/logger"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the project ledger database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSequencesCmd(),
		newAuditCmd(),
		newAuditFailuresCmd(),
		newSeedCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// withApp loads configuration and runs fn against a wired application that
// does not migrate on open.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Database.AutoMigrate = false

	log := logger.New(logger.Config{Level: "warn", Format: "text", ServiceName: "ledgerctl", Output: os.Stderr})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
