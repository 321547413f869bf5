package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	lecturerrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/lecturer"
	userrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/user"
	"github.com/heartmarshall/claims-backend/internal/auth"
	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/service/account"
)

var createUserFlags struct {
	username   string
	password   string
	role       string
	name       string
	surname    string
	email      string
	department string
	rate       string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account without an HR session (first HR account, recovery)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		f := createUserFlags
		input := account.CreateUserInput{
			Username:   f.username,
			Password:   f.password,
			Role:       domain.Role(f.role),
			Name:       f.name,
			Surname:    f.surname,
			Email:      f.email,
			Department: f.department,
		}
		if f.rate != "" {
			rate, err := decimal.NewFromString(f.rate)
			if err != nil {
				return fmt.Errorf("--rate: %w", err)
			}
			input.HourlyRate = &rate
		}

		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		u, err := newAccountService(pool).Bootstrap(ctx, input)
		if err != nil {
			return describeValidation(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Username, u.Role)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an access token for an active user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}

		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		u, err := userrepo.New(pool).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return fmt.Errorf("user %d is deactivated", id)
		}

		jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		token, err := jwtMgr.GenerateAccessToken(u.Actor())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	fl := createUserCmd.Flags()
	fl.StringVar(&createUserFlags.username, "username", "", "login name")
	fl.StringVar(&createUserFlags.password, "password", "", "initial password")
	fl.StringVar(&createUserFlags.role, "role", string(domain.RoleHR), "LECTURER, COORDINATOR, MANAGER or HR")
	fl.StringVar(&createUserFlags.name, "name", "", "given name")
	fl.StringVar(&createUserFlags.surname, "surname", "", "family name")
	fl.StringVar(&createUserFlags.email, "email", "", "email address")
	fl.StringVar(&createUserFlags.department, "department", "", "department")
	fl.StringVar(&createUserFlags.rate, "rate", "", "hourly rate (lecturers; defaults to the configured rate)")
	for _, name := range []string{"username", "password", "name", "surname", "email"} {
		_ = createUserCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(createUserCmd, tokenCmd)
}

func newAccountService(pool *pgxpool.Pool) *account.Service {
	return account.NewService(
		logger,
		userrepo.New(pool),
		lecturerrepo.New(pool),
		postgres.NewTxManager(pool),
		cfg.Auth.PasswordCost,
		cfg.Claims.HourlyRate(),
	)
}

// describeValidation expands field errors so they are readable on a terminal.
func describeValidation(err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for _, fe := range ve.Errors {
		logger.Error("invalid input", slog.String("field", fe.Field), slog.String("message", fe.Message))
	}
	return err
}

// bootstrapIfMissing creates the account unless the username is taken.
func bootstrapIfMissing(ctx context.Context, svc *account.Service, input account.CreateUserInput) (*domain.User, bool, error) {
	u, err := svc.Bootstrap(ctx, input)
	if err == nil {
		return u, true, nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Errors) == 1 && ve.Errors[0].Field == "username" {
		return nil, false, nil
	}
	return nil, false, err
}
