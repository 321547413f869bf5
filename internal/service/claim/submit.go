package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// Submit stores the supporting document and creates a claim in SUBMITTED
// status for the calling lecturer. The hourly rate is read from the
// lecturer's account and frozen on the claim. If the claim cannot be
// persisted the stored document is removed again.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, input SubmitInput) (*domain.Claim, error) {
	if err := policy.Authorize(actor, domain.OpSubmitClaim); err != nil {
		return nil, err
	}
	if err := input.Validate(s.limits); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("claim.Submit: load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("claim.Submit: user %d is deactivated: %w", user.ID, domain.ErrUnauthorized)
	}
	if user.LecturerID == nil {
		return nil, fmt.Errorf("claim.Submit: user %d has no lecturer profile: %w", user.ID, domain.ErrNotFound)
	}

	ref, err := s.blobs.Save(ctx, input.Document.Filename, input.Document.Body)
	if err != nil {
		return nil, fmt.Errorf("claim.Submit: store document: %w", err)
	}

	var created *domain.Claim
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		created, txErr = s.claims.Create(ctx, &domain.Claim{
			LecturerID:         *user.LecturerID,
			Period:             strings.TrimSpace(input.Period),
			HoursWorked:        input.HoursWorked,
			HourlyRate:         user.HourlyRate,
			Description:        strings.TrimSpace(input.Description),
			SupportingDocument: &ref,
		})
		return txErr
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.log.ErrorContext(ctx, "orphaned document after failed submission",
				slog.String("ref", ref),
				slog.String("error", delErr.Error()),
			)
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("claim.Submit: %w", err)
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", domain.TransitionSubmit.String())))
	s.log.InfoContext(ctx, "claim submitted",
		slog.Int64("claim_id", created.ID),
		slog.Int64("lecturer_id", created.LecturerID),
		slog.Int("hours", created.HoursWorked),
		slog.String("amount", created.Amount().StringFixed(2)),
	)

	return created, nil
}
