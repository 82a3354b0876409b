package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/adapter/reporting"
	"github.com/fixora/projectledger/internal/app"
)

var errFailureSinkDisabled = errors.New("the Redis audit failure sink is not enabled (set AUDIT_SINK_REDIS_ENABLED=true)")

func newAuditFailuresCmd() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "audit-failures",
		Short: "Show rejected audit writes",
		Long:  "Lists the newest audit writes that were rejected and pushed to the Redis failure sink.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if a.FailureSink == nil {
					return errFailureSinkDisabled
				}

				failures, err := a.FailureSink.Recent(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("reading audit failures: %w", err)
				}

				if len(failures) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No audit failures recorded.")
					return nil
				}
				for _, f := range failures {
					printAuditFailure(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "l", 20, "Maximum number of failures to display")

	return cmd
}

func printAuditFailure(w io.Writer, f reporting.AuditFailure) {
	line := fmt.Sprintf("%s  %s/%s  records=%d  %s",
		f.OccurredAt.Format(time.RFC3339), f.EntityType, f.EntityID, len(f.Records), f.Error)
	if f.CorrelationID != "" {
		line += "  correlation=" + f.CorrelationID
	}
	fmt.Fprintln(w, line)
}
