package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/adapter/persistence"
	"github.com/fixora/projectledger/internal/app"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Applies every pending migration for the configured driver, or reverts all of them with --down.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				return runMigrate(cmd, a.Store, down)
			})
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Revert applied migrations, newest first")

	return cmd
}

func runMigrate(cmd *cobra.Command, store *persistence.Store, down bool) error {
	var (
		result *persistence.MigrationResult
		err    error
	)
	if down {
		result, err = store.MigrateDown(cmd.Context())
	} else {
		result, err = store.Migrate(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(result.Applied) == 0 {
		fmt.Fprintln(out, "No migrations to apply.")
		return nil
	}

	verb := "Applied"
	if down {
		verb = "Reverted"
	}
	for _, name := range result.Applied {
		fmt.Fprintf(out, "%s %s\n", verb, name)
	}
	return nil
}
