package invoice

import (
	"context"
	"fmt"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/policy"
)

const recentlyApprovedLimit = 5

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	if err := policy.Authorize(actor, domain.OpViewInvoices); err != nil {
		return nil, err
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice.Get: %w", err)
	}
	return inv, nil
}

// List returns invoices newest first.
func (s *Service) List(ctx context.Context, actor domain.Actor, unpaidOnly bool) ([]domain.Invoice, error) {
	if err := policy.Authorize(actor, domain.OpViewInvoices); err != nil {
		return nil, err
	}
	invoices, err := s.invoices.List(ctx, unpaidOnly)
	if err != nil {
		return nil, fmt.Errorf("invoice.List: %w", err)
	}
	return invoices, nil
}

// Dashboard collects the HR overview counters.
func (s *Service) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	if err := policy.Authorize(actor, domain.OpViewDashboard); err != nil {
		return nil, err
	}

	var (
		d   domain.Dashboard
		err error
	)
	if d.PendingInvoices, err = s.claims.CountByStatus(ctx, domain.ClaimStatusApproved, true); err != nil {
		return nil, fmt.Errorf("invoice.Dashboard: pending: %w", err)
	}
	if d.TotalInvoices, d.UnpaidInvoices, err = s.invoices.Counts(ctx); err != nil {
		return nil, fmt.Errorf("invoice.Dashboard: invoices: %w", err)
	}
	if d.TotalLecturers, err = s.lecturers.Count(ctx); err != nil {
		return nil, fmt.Errorf("invoice.Dashboard: lecturers: %w", err)
	}
	if d.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("invoice.Dashboard: users: %w", err)
	}
	if d.RecentlyApproved, err = s.claims.ListRecentlyApproved(ctx, recentlyApprovedLimit); err != nil {
		return nil, fmt.Errorf("invoice.Dashboard: recent: %w", err)
	}

	return &d, nil
}
