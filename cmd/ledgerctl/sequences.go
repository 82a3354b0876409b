package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/app"
)

func newSequencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sequences",
		Short: "List sequence counters",
		Long:  "Shows the last identifier issued for every sequenced entity type.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				counters, err := a.Coordinator.Allocator().Counters(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing counters: %w", err)
				}

				if len(counters) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No identifiers allocated yet.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ENTITY\tLAST VALUE\tLAST ISSUED")
				for _, c := range counters {
					fmt.Fprintf(w, "%s\t%d\t%s\n", c.EntityType, c.LastValue, c.Current())
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if err := a.Coordinator.Allocator().CheckCounters(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				return nil
			})
		},
	}
}
