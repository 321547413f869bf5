package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// Forward moves a SUBMITTED claim to FORWARDED. Coordinator only.
func (s *Service) Forward(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return s.review(ctx, actor, claimID, domain.TransitionForward, domain.OpForwardClaim, message)
}

// Reject moves a claim to REJECTED. A coordinator rejects from SUBMITTED,
// a manager from FORWARDED.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return s.review(ctx, actor, claimID, domain.TransitionReject, policy.RejectOperation(actor.Role), message)
}

// Approve moves a FORWARDED claim to APPROVED and records the approval time.
// Manager only.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return s.review(ctx, actor, claimID, domain.TransitionApprove, domain.OpApproveClaim, message)
}

// review applies one edge of the review table. The conditional status update
// and the feedback append share a transaction, so a claim never changes
// status without its decision record and a losing concurrent reviewer gets
// a TransitionError with nothing written.
func (s *Service) review(
	ctx context.Context,
	actor domain.Actor,
	claimID int64,
	t domain.Transition,
	op domain.Operation,
	message string,
) (*domain.Claim, error) {
	if err := policy.Authorize(actor, op); err != nil {
		return nil, err
	}
	from, ok := domain.SourceStatus(t, actor.Role)
	if !ok {
		return nil, fmt.Errorf("%s as %q: %w", t, actor.Role, domain.ErrUnauthorized)
	}
	to, _ := domain.NextStatus(from, t, actor.Role)

	if err := validateMessage(message, s.limits); err != nil {
		return nil, err
	}

	var updated *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var approvedAt *time.Time
		if to == domain.ClaimStatusApproved {
			now := s.now()
			approvedAt = &now
		}

		moved, err := s.claims.TransitionStatus(ctx, claimID, from, to, approvedAt)
		if err != nil {
			return err
		}
		if !moved {
			return s.transitionFailure(ctx, claimID, t)
		}

		if _, err := s.feedback.Append(ctx, &domain.FeedbackEntry{
			ClaimID: claimID,
			Role:    actor.Role,
			Message: domain.FeedbackMessage(t, actor.Role, message),
		}); err != nil {
			return err
		}

		updated, err = s.claims.GetByID(ctx, claimID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("claim.%s: %w", t, err)
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transition", t.String()),
		attribute.String("role", actor.Role.String()),
	))
	s.log.InfoContext(ctx, "claim transitioned",
		slog.Int64("claim_id", claimID),
		slog.String("transition", t.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int64("actor_id", actor.UserID),
	)

	return updated, nil
}

// transitionFailure explains why a conditional update matched no row:
// the claim is gone, or it is in some other status.
func (s *Service) transitionFailure(ctx context.Context, claimID int64, t domain.Transition) error {
	current, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("reload claim %d: %w", claimID, err)
	}
	return &domain.TransitionError{ClaimID: claimID, Transition: t, From: current.Status}
}
