package claim

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// Delete removes a REJECTED or APPROVED claim owned by the calling lecturer,
// together with its feedback and its stored document. The document goes
// only after the row deletion commits, so no surviving claim can point at a
// missing document. A document that cannot be removed then is logged and
// left on disk.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, claimID int64) error {
	if err := policy.Authorize(actor, domain.OpDeleteOwnClaim); err != nil {
		return err
	}

	var document *string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if !actor.OwnsLecturer(c.LecturerID) {
			return fmt.Errorf("claim %d belongs to another lecturer: %w", claimID, domain.ErrUnauthorized)
		}
		if !domain.IsDeletable(c.Status) {
			return &domain.TransitionError{ClaimID: claimID, Transition: domain.TransitionDelete, From: c.Status}
		}

		deleted, err := s.claims.DeleteIfStatus(ctx, claimID, domain.ClaimStatusRejected, domain.ClaimStatusApproved)
		if err != nil {
			return err
		}
		if !deleted {
			return s.transitionFailure(ctx, claimID, domain.TransitionDelete)
		}
		document = c.SupportingDocument
		return nil
	})
	if err != nil {
		return fmt.Errorf("claim.Delete: %w", err)
	}

	if document != nil {
		if err := s.blobs.Delete(ctx, *document); err != nil {
			s.log.WarnContext(ctx, "orphaned document after claim deletion",
				slog.Int64("claim_id", claimID),
				slog.String("document", *document),
				slog.String("error", err.Error()),
			)
		}
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", domain.TransitionDelete.String())))
	s.log.InfoContext(ctx, "claim deleted",
		slog.Int64("claim_id", claimID),
		slog.Int64("actor_id", actor.UserID),
	)

	return nil
}
