// Package invoice implements the Invoice repository using PostgreSQL.
package invoice

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Repo provides invoice persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invoice repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var invoiceColumns = []string{
	"id", "invoice_number", "claim_id", "lecturer_id", "amount", "generated_at", "is_paid",
}

// GetByID returns an invoice by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	query, args, err := postgres.Builder.
		Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get invoice: %w", err)
	}

	inv, err := scanInvoice(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return &inv, nil
}

// List returns invoices newest first. unpaidOnly hides paid invoices.
func (r *Repo) List(ctx context.Context, unpaidOnly bool) ([]domain.Invoice, error) {
	b := postgres.Builder.
		Select(invoiceColumns...).
		From("invoices").
		OrderBy("generated_at DESC", "id DESC")
	if unpaidOnly {
		b = b.Where(sq.Eq{"is_paid": false})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoices: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "invoices", 0)
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, postgres.MapError(err, "invoices", 0)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "invoices", 0)
	}
	return out, nil
}

// Counts returns the total and unpaid invoice counts.
func (r *Repo) Counts(ctx context.Context) (total, unpaid int, err error) {
	err = postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, `SELECT count(*), count(*) FILTER (WHERE NOT is_paid) FROM invoices`).
		Scan(&total, &unpaid)
	if err != nil {
		return 0, 0, postgres.MapError(err, "invoices count", 0)
	}
	return total, unpaid, nil
}

// constraintOneInvoicePerClaim is the partial unique index on invoices.claim_id.
const constraintOneInvoicePerClaim = "ux_invoices_claim"

// Create inserts an invoice.
func (r *Repo) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	query, args, err := postgres.Builder.
		Insert("invoices").
		Columns("invoice_number", "claim_id", "lecturer_id", "amount", "generated_at", "is_paid").
		Values(inv.InvoiceNumber, inv.ClaimID, inv.LecturerID, inv.Amount, inv.GeneratedAt, false).
		Suffix("RETURNING id, invoice_number, claim_id, lecturer_id, amount, generated_at, is_paid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert invoice: %w", err)
	}

	created, err := scanInvoice(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.ConstraintName(err) == constraintOneInvoicePerClaim {
			return nil, fmt.Errorf("invoice for claim %d: %w", inv.ClaimID, domain.ErrAlreadyInvoiced)
		}
		return nil, postgres.MapError(err, "invoice for claim", inv.ClaimID)
	}
	return &created, nil
}

// MarkPaid sets is_paid on invoice id. Marking a paid invoice again is a no-op.
func (r *Repo) MarkPaid(ctx context.Context, id int64) (*domain.Invoice, error) {
	query, args, err := postgres.Builder.
		Update("invoices").
		Set("is_paid", true).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, invoice_number, claim_id, lecturer_id, amount, generated_at, is_paid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mark invoice paid: %w", err)
	}

	inv, err := scanInvoice(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return &inv, nil
}

// Delete removes invoice id and returns the deleted row.
func (r *Repo) Delete(ctx context.Context, id int64) (*domain.Invoice, error) {
	query, args, err := postgres.Builder.
		Delete("invoices").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, invoice_number, claim_id, lecturer_id, amount, generated_at, is_paid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete invoice: %w", err)
	}

	inv, err := scanInvoice(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return &inv, nil
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var (
		inv     domain.Invoice
		claimID *int64
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &claimID, &inv.LecturerID, &inv.Amount, &inv.GeneratedAt, &inv.IsPaid)
	if err != nil {
		return domain.Invoice{}, err
	}
	if claimID != nil {
		inv.ClaimID = *claimID
	}
	inv.GeneratedAt = inv.GeneratedAt.UTC()
	return inv, nil
}
