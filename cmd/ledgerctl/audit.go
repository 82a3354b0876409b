package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/app"
	"github.com/fixora/projectledger/internal/domain"
)

func newAuditCmd() *cobra.Command {
	var (
		entity string
		id     string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail",
		Long:  "Lists audit records newest first, optionally filtered by entity type and id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				records, err := a.Coordinator.ListAudit(cmd.Context(), domain.AuditFilter{
					EntityType: domain.EntityType(entity),
					EntityID:   id,
					Limit:      limit,
				})
				if err != nil {
					return fmt.Errorf("listing audit records: %w", err)
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No audit records found.")
					return nil
				}
				for _, rec := range records {
					printAuditRecord(cmd.OutOrStdout(), rec)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Filter by entity type (project, ncr, ...)")
	cmd.Flags().StringVar(&id, "id", "", "Filter by entity id")
	cmd.Flags().IntVarP(&limit, "limit", "l", domain.DefaultAuditLimit, "Maximum number of records to display")

	return cmd
}

func printAuditRecord(w io.Writer, rec *domain.AuditRecord) {
	actor := "-"
	if rec.ActorName != nil {
		actor = *rec.ActorName
	} else if rec.ActorID != nil {
		actor = *rec.ActorID
	}

	line := fmt.Sprintf("%s  %-6s  %s/%s  by %s",
		rec.Timestamp.Format(time.RFC3339), rec.Action, rec.EntityType, rec.EntityID, actor)

	switch {
	case rec.Field != nil:
		line += fmt.Sprintf("  %s: %s -> %s", *rec.Field, deref(rec.OldValue), deref(rec.NewValue))
	case rec.NewValue != nil:
		line += "  " + *rec.NewValue
	case rec.OldValue != nil:
		line += "  " + *rec.OldValue
	}

	fmt.Fprintln(w, line)
}

func deref(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
