package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fixora/projectledger/internal/app"
	"github.com/fixora/projectledger/internal/domain"
)

func newSeedCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo records",
		Long:  "Creates a coordinator, a project and one record of each child type through the engine, so numbering, rollups and the audit trail are exercised.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				return runSeed(cmd, a, email)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", getenvDefault("SEED_USER_EMAIL", "coordinator@example.com"), "Email of the seeded coordinator")

	return cmd
}

func runSeed(cmd *cobra.Command, a *app.App, email string) error {
	ctx := cmd.Context()
	coord := a.Coordinator
	actor := domain.Actor{ID: "seed", Name: "ledgerctl seed"}

	user, err := coord.CreateUser(ctx, domain.CreateUser{Name: "Demo Coordinator", Email: email, Role: domain.UserRoleCoordinator}, actor)
	if err != nil {
		return fmt.Errorf("seeding user: %w", err)
	}

	project, err := coord.CreateProject(ctx, domain.CreateProject{Name: "Demo Project", Client: "Demo Client", CoordinatorID: &user.ID}, actor)
	if err != nil {
		return fmt.Errorf("seeding project: %w", err)
	}

	ncr, err := coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: project.ID, Title: "Incorrect rebar spacing", CostImpact: domain.Amount("1250")}, actor)
	if err != nil {
		return fmt.Errorf("seeding ncr: %w", err)
	}
	variation, err := coord.CreateVariation(ctx, domain.CreateVariation{ProjectID: project.ID, Title: "Additional loading bay", Amount: domain.Amount("4800")}, actor)
	if err != nil {
		return fmt.Errorf("seeding variation: %w", err)
	}
	po, err := coord.CreatePurchaseOrder(ctx, domain.CreatePurchaseOrder{ProjectID: &project.ID, Supplier: "Steel Supplies Ltd", Total: domain.Amount("15600")}, actor)
	if err != nil {
		return fmt.Errorf("seeding purchase order: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded user: email=%s id=%s\n", user.Email, user.ID)
	fmt.Fprintf(out, "Seeded project %s (%s)\n", project.Number, project.ID)
	fmt.Fprintf(out, "Seeded %s, %s, %s\n", ncr.Number, variation.Number, po.Number)
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
