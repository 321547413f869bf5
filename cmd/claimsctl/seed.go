package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/service/account"
)

var seedPassword string

// seedAccounts is one demo account per role.
var seedAccounts = []account.CreateUserInput{
	{Username: "lecturer", Role: domain.RoleLecturer, Name: "Lindiwe", Surname: "Mokoena", Email: "lecturer@claims.local", Department: "Computing"},
	{Username: "coordinator", Role: domain.RoleCoordinator, Name: "Pieter", Surname: "Naidoo", Email: "coordinator@claims.local", Department: "Computing"},
	{Username: "manager", Role: domain.RoleManager, Name: "Ayesha", Surname: "Khan", Email: "manager@claims.local", Department: "Academic Office"},
	{Username: "hr", Role: domain.RoleHR, Name: "Thabo", Surname: "Dlamini", Email: "hr@claims.local", Department: "Human Resources"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create one demo account per role; existing usernames are left alone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := newAccountService(pool)
		for _, in := range seedAccounts {
			in.Password = seedPassword
			u, created, err := bootstrapIfMissing(ctx, svc, in)
			if err != nil {
				return fmt.Errorf("seed %s: %w", in.Username, describeValidation(err))
			}
			if !created {
				logger.InfoContext(ctx, "seed account exists", slog.String("username", in.Username))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.Role)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "ChangeMe123!", "password for every seeded account")
	rootCmd.AddCommand(seedCmd)
}
