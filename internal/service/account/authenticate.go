package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/claims-backend/internal/auth"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Authenticate checks a username and password and returns the active user.
// Unknown users, deactivated users and wrong passwords all return
// ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("account.Authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("account.Authenticate: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	s.log.InfoContext(ctx, "user authenticated", slog.Int64("user_id", user.ID))

	return user, nil
}

// CurrentActor returns the live identity behind a token's user id. Tokens
// outlive account changes, so every authenticated request resolves the actor
// again: a deactivated or deleted account is ErrUnauthorized, and a changed
// role or lecturer link applies at once.
func (s *Service) CurrentActor(ctx context.Context, userID int64) (domain.Actor, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, fmt.Errorf("user %d: %w", userID, domain.ErrUnauthorized)
		}
		return domain.Actor{}, fmt.Errorf("account.CurrentActor: %w", err)
	}
	if !user.IsActive {
		return domain.Actor{}, fmt.Errorf("user %d is deactivated: %w", userID, domain.ErrUnauthorized)
	}
	return user.Actor(), nil
}
