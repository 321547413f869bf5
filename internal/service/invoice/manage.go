package invoice

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

// MarkPaid flags an invoice as paid. Paying a paid invoice succeeds and
// changes nothing; there is no way back to unpaid.
func (s *Service) MarkPaid(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	if err := policy.Authorize(actor, domain.OpMarkInvoicePaid); err != nil {
		return nil, err
	}

	inv, err := s.invoices.MarkPaid(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice.MarkPaid: %w", err)
	}

	s.events.Add(ctx, 1, metric.WithAttributes(attribute.String("action", "paid")))
	s.log.InfoContext(ctx, "invoice marked paid",
		slog.Int64("invoice_id", inv.ID),
		slog.String("invoice_number", inv.InvoiceNumber),
	)

	return inv, nil
}

// Delete removes an invoice and clears the number from its claim in the same
// transaction, so the claim can be billed again.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, invoiceID int64) error {
	if err := policy.Authorize(actor, domain.OpDeleteInvoice); err != nil {
		return err
	}

	var deleted *domain.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.invoices.Delete(ctx, invoiceID)
		if err != nil {
			return err
		}
		if deleted.ClaimID == 0 {
			return nil
		}
		return s.claims.ClearInvoiceNumber(ctx, deleted.ClaimID, deleted.InvoiceNumber)
	})
	if err != nil {
		return fmt.Errorf("invoice.Delete: %w", err)
	}

	s.events.Add(ctx, 1, metric.WithAttributes(attribute.String("action", "deleted")))
	s.log.InfoContext(ctx, "invoice deleted",
		slog.Int64("invoice_id", deleted.ID),
		slog.String("invoice_number", deleted.InvoiceNumber),
		slog.Int64("claim_id", deleted.ClaimID),
	)

	return nil
}
