// Package account implements HR-managed user accounts, lecturer profile
// provisioning and password authentication.
package account

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// userRepo defines the user persistence needed by the account service.
type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error)
	LinkLecturer(ctx context.Context, id, lecturerID int64) error
	Deactivate(ctx context.Context, id int64) error
}

// lecturerRepo defines the lecturer profile persistence needed by the account service.
type lecturerRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.Lecturer, error)
	List(ctx context.Context) ([]domain.Lecturer, error)
	Create(ctx context.Context, l *domain.Lecturer) (*domain.Lecturer, error)
}

// txManager defines the transaction manager interface needed by the account service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements account management.
type Service struct {
	log          *slog.Logger
	users        userRepo
	lecturers    lecturerRepo
	tx           txManager
	passwordCost int
	defaultRate  decimal.Decimal
}

// NewService creates a new account service instance. New lecturer accounts
// get defaultRate unless HR supplies a rate.
func NewService(
	logger *slog.Logger,
	users userRepo,
	lecturers lecturerRepo,
	tx txManager,
	passwordCost int,
	defaultRate decimal.Decimal,
) *Service {
	return &Service{
		log:          logger.With("service", "account"),
		users:        users,
		lecturers:    lecturers,
		tx:           tx,
		passwordCost: passwordCost,
		defaultRate:  defaultRate,
	}
}
