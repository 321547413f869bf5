// Package invoice implements the invoice issuance gate for approved claims,
// invoice payment and deletion, and the HR dashboard.
package invoice

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// claimRepo defines the claim persistence needed by the invoice service.
type claimRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Claim, error)
	StampInvoiceNumber(ctx context.Context, id int64, number string) (bool, error)
	ClearInvoiceNumber(ctx context.Context, id int64, number string) error
	CountByStatus(ctx context.Context, status domain.ClaimStatus, unbilled bool) (int, error)
	ListRecentlyApproved(ctx context.Context, limit int) ([]domain.ClaimWithLecturer, error)
}

// invoiceRepo defines the invoice persistence needed by the invoice service.
type invoiceRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	List(ctx context.Context, unpaidOnly bool) ([]domain.Invoice, error)
	Counts(ctx context.Context) (total, unpaid int, err error)
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, id int64) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) (*domain.Invoice, error)
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the invoice issuance gate.
type Service struct {
	log       *slog.Logger
	claims    claimRepo
	invoices  invoiceRepo
	lecturers counter
	users     counter
	tx        txManager
	now       func() time.Time

	events metric.Int64Counter
}

// NewService creates a new invoice service instance.
func NewService(
	logger *slog.Logger,
	meter metric.Meter,
	claims claimRepo,
	invoices invoiceRepo,
	lecturers counter,
	users counter,
	tx txManager,
) (*Service, error) {
	events, err := meter.Int64Counter("claims.invoices",
		metric.WithDescription("Invoice events, by action."),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		log:       logger.With("service", "invoice"),
		claims:    claims,
		invoices:  invoices,
		lecturers: lecturers,
		users:     users,
		tx:        tx,
		now:       func() time.Time { return time.Now().UTC() },
		events:    events,
	}, nil
}
