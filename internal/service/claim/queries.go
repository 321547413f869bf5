package claim

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// queueOps maps each status queue to the grant that may read it.
var queueOps = map[domain.ClaimStatus]domain.Operation{
	domain.ClaimStatusSubmitted: domain.OpViewSubmittedQueue,
	domain.ClaimStatusForwarded: domain.OpViewForwardedQueue,
	domain.ClaimStatusApproved:  domain.OpViewApprovedQueue,
	domain.ClaimStatusRejected:  domain.OpViewAnyClaims,
}

// ListByStatus returns the review queue for status, oldest first. The
// APPROVED queue contains only claims that have not been invoiced yet.
func (s *Service) ListByStatus(ctx context.Context, actor domain.Actor, status domain.ClaimStatus) ([]domain.ClaimWithLecturer, error) {
	op, ok := queueOps[status]
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	if err := policy.Authorize(actor, op); err != nil {
		return nil, err
	}

	claims, err := s.claims.ListByStatus(ctx, domain.ClaimFilter{
		Status:   status,
		Unbilled: status == domain.ClaimStatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("claim.ListByStatus: %w", err)
	}
	return claims, nil
}

// ListByLecturer returns a lecturer's claims with their feedback, newest
// first. Lecturers may read only their own history; HR may read anyone's.
func (s *Service) ListByLecturer(ctx context.Context, actor domain.Actor, lecturerID int64) ([]domain.Claim, error) {
	op := domain.OpViewOwnClaims
	if policy.Allowed(actor.Role, domain.OpViewAnyClaims) {
		op = domain.OpViewAnyClaims
	} else if !actor.OwnsLecturer(lecturerID) {
		return nil, fmt.Errorf("claims of lecturer %d: %w", lecturerID, domain.ErrUnauthorized)
	}
	if err := policy.Authorize(actor, op); err != nil {
		return nil, err
	}

	claims, err := s.claims.ListByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, fmt.Errorf("claim.ListByLecturer: %w", err)
	}
	if len(claims) == 0 {
		return claims, nil
	}

	ids := make([]int64, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	byClaim, err := s.feedback.ListByClaims(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("claim.ListByLecturer: feedback: %w", err)
	}
	for i := range claims {
		claims[i].Feedback = byClaim[claims[i].ID]
	}

	return claims, nil
}

// ClaimWithFeedback returns one claim with its feedback in insertion order.
func (s *Service) ClaimWithFeedback(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Claim, error) {
	c, err := s.viewable(ctx, actor, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim.ClaimWithFeedback: %w", err)
	}

	c.Feedback, err = s.feedback.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("claim.ClaimWithFeedback: feedback: %w", err)
	}
	return c, nil
}

// QuoteAmount previews the amount a claim for hours would carry at the
// caller's current rate. Nothing is persisted.
func (s *Service) QuoteAmount(ctx context.Context, actor domain.Actor, hours int) (decimal.Decimal, error) {
	if err := policy.Authorize(actor, domain.OpQuoteAmount); err != nil {
		return decimal.Zero, err
	}
	if hours <= 0 || hours > s.limits.MaxHoursPerClaim {
		return decimal.Zero, domain.NewValidationError("hours_worked", fmt.Sprintf("must be between 1 and %d", s.limits.MaxHoursPerClaim))
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("claim.QuoteAmount: %w", err)
	}
	return decimal.NewFromInt(int64(hours)).Mul(user.HourlyRate), nil
}

// OpenDocument streams a claim's supporting document. The caller must close
// the returned reader.
func (s *Service) OpenDocument(ctx context.Context, actor domain.Actor, claimID int64) (io.ReadCloser, string, error) {
	c, err := s.viewable(ctx, actor, claimID)
	if err != nil {
		return nil, "", fmt.Errorf("claim.OpenDocument: %w", err)
	}
	if c.SupportingDocument == nil {
		return nil, "", fmt.Errorf("claim.OpenDocument: claim %d has no document: %w", claimID, domain.ErrNotFound)
	}

	rc, err := s.blobs.Open(ctx, *c.SupportingDocument)
	if err != nil {
		return nil, "", fmt.Errorf("claim.OpenDocument: %w", err)
	}
	return rc, *c.SupportingDocument, nil
}

// viewable loads a claim the actor may look at: reviewers and HR see any
// claim, lecturers only their own.
func (s *Service) viewable(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Claim, error) {
	if err := policy.Authorize(actor, domain.OpViewDocument); err != nil {
		return nil, err
	}

	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleLecturer && !actor.OwnsLecturer(c.LecturerID) {
		return nil, fmt.Errorf("claim %d belongs to another lecturer: %w", claimID, domain.ErrUnauthorized)
	}
	return c, nil
}
