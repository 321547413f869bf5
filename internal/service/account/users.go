package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/claims-backend/internal/auth"
	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// CreateUser creates an account. Lecturer accounts are linked to a lecturer
// profile, which is created when no profile with the same email exists.
func (s *Service) CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if err := policy.Authorize(actor, domain.OpManageUsers); err != nil {
		return nil, err
	}

	created, err := s.create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("account.CreateUser: %w", err)
	}

	s.log.InfoContext(ctx, "user created",
		slog.Int64("user_id", created.ID),
		slog.String("role", created.Role.String()),
		slog.Int64("actor_id", actor.UserID),
	)

	return created, nil
}

// Bootstrap creates an account on behalf of the operator rather than an HR
// user. It exists for the command line tool, which has to create the first
// HR account; it is not reachable over HTTP.
func (s *Service) Bootstrap(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	created, err := s.create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("account.Bootstrap: %w", err)
	}

	s.log.InfoContext(ctx, "user bootstrapped",
		slog.Int64("user_id", created.ID),
		slog.String("role", created.Role.String()),
	)

	return created, nil
}

func (s *Service) create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.passwordCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		Role:         input.Role,
		Name:         strings.TrimSpace(input.Name),
		Surname:      strings.TrimSpace(input.Surname),
		Email:        strings.TrimSpace(input.Email),
		Department:   strings.TrimSpace(input.Department),
	}
	switch {
	case input.HourlyRate != nil:
		u.HourlyRate = *input.HourlyRate
	case input.Role == domain.RoleLecturer:
		u.HourlyRate = s.defaultRate
	}

	var created *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.users.Create(ctx, u)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.NewValidationError("username", "already taken")
			}
			return err
		}
		if created.Role == domain.RoleLecturer {
			return s.ensureLecturerProfile(ctx, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateUser changes an account. A user moved into the Lecturer role gets a
// lecturer profile and, if they had no rate, the default rate.
func (s *Service) UpdateUser(ctx context.Context, actor domain.Actor, userID int64, input UpdateUserInput) (*domain.User, error) {
	if err := policy.Authorize(actor, domain.OpManageUsers); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		params := input.params()
		if lecturerAfterUpdate(current, params) {
			name, surname := current.Name, current.Surname
			if params.Name != nil {
				name = *params.Name
			}
			if params.Surname != nil {
				surname = *params.Surname
			}
			if errs := checkProfileName(nil, name, surname); len(errs) > 0 {
				return &domain.ValidationError{Errors: errs}
			}
		}

		becomesLecturer := params.Role != nil && *params.Role == domain.RoleLecturer && current.Role != domain.RoleLecturer
		if becomesLecturer && params.HourlyRate == nil && current.HourlyRate.IsZero() {
			params.HourlyRate = &s.defaultRate
		}

		updated, err = s.users.Update(ctx, userID, params)
		if err != nil {
			return err
		}
		if updated.Role == domain.RoleLecturer {
			return s.ensureLecturerProfile(ctx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("account.UpdateUser: %w", err)
	}

	s.log.InfoContext(ctx, "user updated",
		slog.Int64("user_id", updated.ID),
		slog.String("role", updated.Role.String()),
		slog.Int64("actor_id", actor.UserID),
	)

	return updated, nil
}

// DeactivateUser soft-deletes an account. HR cannot deactivate itself.
func (s *Service) DeactivateUser(ctx context.Context, actor domain.Actor, userID int64) error {
	if err := policy.Authorize(actor, domain.OpManageUsers); err != nil {
		return err
	}
	if actor.UserID == userID {
		return domain.NewValidationError("user_id", "cannot deactivate yourself")
	}

	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("account.DeactivateUser: %w", err)
	}

	s.log.InfoContext(ctx, "user deactivated",
		slog.Int64("user_id", userID),
		slog.Int64("actor_id", actor.UserID),
	)

	return nil
}

// ListUsers returns active accounts.
func (s *Service) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := policy.Authorize(actor, domain.OpManageUsers); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("account.ListUsers: %w", err)
	}
	return users, nil
}

// ListLecturers returns all lecturer profiles.
func (s *Service) ListLecturers(ctx context.Context, actor domain.Actor) ([]domain.Lecturer, error) {
	if err := policy.Authorize(actor, domain.OpManageUsers); err != nil {
		return nil, err
	}
	lecturers, err := s.lecturers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("account.ListLecturers: %w", err)
	}
	return lecturers, nil
}

// lecturerAfterUpdate reports whether the account will need a lecturer
// profile once p is applied and does not have one yet.
func lecturerAfterUpdate(current *domain.User, p domain.UserUpdateParams) bool {
	role := current.Role
	if p.Role != nil {
		role = *p.Role
	}
	return role == domain.RoleLecturer && current.LecturerID == nil
}

// ensureLecturerProfile links u to the lecturer profile with u's email,
// creating the profile first if needed. It sets u.LecturerID. A user that is
// already linked is left alone.
func (s *Service) ensureLecturerProfile(ctx context.Context, u *domain.User) error {
	if u.LecturerID != nil {
		return nil
	}

	profile, err := s.lecturers.GetByEmail(ctx, u.Email)
	if errors.Is(err, domain.ErrNotFound) {
		profile, err = s.lecturers.Create(ctx, &domain.Lecturer{
			Name:        u.FullName(),
			Email:       u.Email,
			PhoneNumber: domain.DefaultPhoneNumber,
			Department:  u.Department,
		})
	}
	if err != nil {
		return fmt.Errorf("lecturer profile for user %d: %w", u.ID, err)
	}

	if err := s.users.LinkLecturer(ctx, u.ID, profile.ID); err != nil {
		return err
	}
	u.LecturerID = &profile.ID

	s.log.InfoContext(ctx, "lecturer profile linked",
		slog.Int64("user_id", u.ID),
		slog.Int64("lecturer_id", profile.ID),
	)
	return nil
}
