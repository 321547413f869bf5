package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// Number returns the invoice number for claimID issued at t.
func Number(t time.Time, claimID int64) string {
	return fmt.Sprintf("INV-%s-%d", t.UTC().Format("20060102"), claimID)
}

// Issue bills an approved claim exactly once. The claim is stamped with the
// invoice number and the invoice row is created in one transaction, with the
// amount copied from the claim at this instant.
func (s *Service) Issue(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Invoice, error) {
	if err := policy.Authorize(actor, domain.OpIssueInvoice); err != nil {
		return nil, err
	}

	var issued *domain.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if err := checkBillable(c); err != nil {
			return err
		}

		now := s.now()
		number := Number(now, claimID)

		stamped, err := s.claims.StampInvoiceNumber(ctx, claimID, number)
		if err != nil {
			return err
		}
		if !stamped {
			// Lost a race with another issuer or reviewer; report what won.
			current, err := s.claims.GetByID(ctx, claimID)
			if err != nil {
				return err
			}
			if err := checkBillable(current); err != nil {
				return err
			}
			return fmt.Errorf("stamp claim %d: %w", claimID, domain.ErrAlreadyInvoiced)
		}

		issued, err = s.invoices.Create(ctx, &domain.Invoice{
			InvoiceNumber: number,
			ClaimID:       claimID,
			LecturerID:    c.LecturerID,
			Amount:        c.Amount(),
			GeneratedAt:   now,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("invoice.Issue: %w", err)
	}

	s.events.Add(ctx, 1, metric.WithAttributes(attribute.String("action", "issued")))
	s.log.InfoContext(ctx, "invoice issued",
		slog.Int64("invoice_id", issued.ID),
		slog.String("invoice_number", issued.InvoiceNumber),
		slog.Int64("claim_id", claimID),
		slog.String("amount", issued.Amount.StringFixed(2)),
	)

	return issued, nil
}

// checkBillable holds when the claim is approved and carries no invoice number.
func checkBillable(c *domain.Claim) error {
	if c.IsInvoiced() {
		return fmt.Errorf("claim %d carries %s: %w", c.ID, *c.InvoiceNumber, domain.ErrAlreadyInvoiced)
	}
	if c.Status != domain.ClaimStatusApproved {
		return &domain.TransitionError{ClaimID: c.ID, Transition: domain.TransitionInvoice, From: c.Status}
	}
	return nil
}
