// Package claim implements the Claim repository using PostgreSQL.
// Status changes are conditional UPDATEs on the expected current status so
// that concurrent reviewers cannot both move the same claim.
package claim

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Repo provides claim persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new claim repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var claimColumns = []string{
	"c.id", "c.lecturer_id", "c.period", "c.hours_worked", "c.hourly_rate",
	"c.description", "c.supporting_document", "c.status", "c.created_at",
	"c.approved_at", "c.invoice_number",
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a claim by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Claim, error) {
	query, args, err := postgres.Builder.
		Select(claimColumns...).
		From("claims c").
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get claim: %w", err)
	}

	c, err := scanClaim(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "claim", id)
	}
	return &c, nil
}

// ListByStatus returns claims in the given status, oldest first, joined with
// the lecturer's display fields.
func (r *Repo) ListByStatus(ctx context.Context, f domain.ClaimFilter) ([]domain.ClaimWithLecturer, error) {
	b := postgres.Builder.
		Select(append(claimColumns, "l.name", "l.email")...).
		From("claims c").
		Join("lecturers l ON l.id = c.lecturer_id").
		Where(sq.Eq{"c.status": string(f.Status)}).
		OrderBy("c.created_at ASC", "c.id ASC")

	if f.Unbilled {
		b = b.Where(sq.Eq{"c.invoice_number": nil})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}

	return r.queryWithLecturer(ctx, b, "list claims by status")
}

// ListRecentlyApproved returns the most recently approved claims, newest approval first.
func (r *Repo) ListRecentlyApproved(ctx context.Context, limit int) ([]domain.ClaimWithLecturer, error) {
	b := postgres.Builder.
		Select(append(claimColumns, "l.name", "l.email")...).
		From("claims c").
		Join("lecturers l ON l.id = c.lecturer_id").
		Where(sq.Eq{"c.status": string(domain.ClaimStatusApproved)}).
		OrderBy("c.approved_at DESC", "c.id DESC").
		Limit(uint64(limit))

	return r.queryWithLecturer(ctx, b, "list recently approved claims")
}

// ListByLecturer returns a lecturer's claims, newest first.
func (r *Repo) ListByLecturer(ctx context.Context, lecturerID int64) ([]domain.Claim, error) {
	query, args, err := postgres.Builder.
		Select(claimColumns...).
		From("claims c").
		Where(sq.Eq{"c.lecturer_id": lecturerID}).
		OrderBy("c.created_at DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list claims by lecturer: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "lecturer claims", lecturerID)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, postgres.MapError(err, "lecturer claims", lecturerID)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "lecturer claims", lecturerID)
	}
	return claims, nil
}

// CountByStatus returns the number of claims in status; unbilled restricts to
// claims without an invoice number.
func (r *Repo) CountByStatus(ctx context.Context, status domain.ClaimStatus, unbilled bool) (int, error) {
	b := postgres.Builder.
		Select("count(*)").
		From("claims").
		Where(sq.Eq{"status": string(status)})
	if unbilled {
		b = b.Where(sq.Eq{"invoice_number": nil})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count claims: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "claims count", 0)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a claim in SUBMITTED status and returns it with its
// database-assigned id and creation time.
func (r *Repo) Create(ctx context.Context, c *domain.Claim) (*domain.Claim, error) {
	query, args, err := postgres.Builder.
		Insert("claims").
		Columns("lecturer_id", "period", "hours_worked", "hourly_rate", "description", "supporting_document", "status").
		Values(c.LecturerID, c.Period, c.HoursWorked, c.HourlyRate, c.Description, c.SupportingDocument, string(domain.ClaimStatusSubmitted)).
		Suffix("RETURNING id, lecturer_id, period, hours_worked, hourly_rate, description, supporting_document, status, created_at, approved_at, invoice_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert claim: %w", err)
	}

	created, err := scanClaim(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "claim", 0)
	}
	return &created, nil
}

// TransitionStatus moves claim id from `from` to `to`. approvedAt is written
// only when non-nil. It reports false, without error, when the claim does not
// exist or is no longer in `from`.
func (r *Repo) TransitionStatus(ctx context.Context, id int64, from, to domain.ClaimStatus, approvedAt *time.Time) (bool, error) {
	b := postgres.Builder.
		Update("claims").
		Set("status", string(to)).
		Where(sq.Eq{"id": id, "status": string(from)})
	if approvedAt != nil {
		b = b.Set("approved_at", *approvedAt)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build transition claim: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "claim", id)
	}
	return tag.RowsAffected() == 1, nil
}

// StampInvoiceNumber sets the invoice number on an approved claim that has
// none yet. It reports false when that precondition does not hold.
func (r *Repo) StampInvoiceNumber(ctx context.Context, id int64, number string) (bool, error) {
	query, args, err := postgres.Builder.
		Update("claims").
		Set("invoice_number", number).
		Where(sq.Eq{
			"id":             id,
			"status":         string(domain.ClaimStatusApproved),
			"invoice_number": nil,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build stamp invoice number: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "claim", id)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearInvoiceNumber removes number from claim id. Clearing a claim that
// carries a different number, or none, is a no-op.
func (r *Repo) ClearInvoiceNumber(ctx context.Context, id int64, number string) error {
	query, args, err := postgres.Builder.
		Update("claims").
		Set("invoice_number", nil).
		Where(sq.Eq{"id": id, "invoice_number": number}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear invoice number: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "claim", id)
	}
	return nil
}

// DeleteIfStatus deletes claim id when its status is one of statuses.
// Feedback rows go with it via ON DELETE CASCADE. It reports false when no
// row matched.
func (r *Repo) DeleteIfStatus(ctx context.Context, id int64, statuses ...domain.ClaimStatus) (bool, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query, args, err := postgres.Builder.
		Delete("claims").
		Where(sq.Eq{"id": id, "status": values}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete claim: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "claim", id)
	}
	return tag.RowsAffected() == 1, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func (r *Repo) queryWithLecturer(ctx context.Context, b sq.SelectBuilder, op string) ([]domain.ClaimWithLecturer, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, op, 0)
	}
	defer rows.Close()

	var out []domain.ClaimWithLecturer
	for rows.Next() {
		var (
			row   claimRow
			name  string
			email string
		)
		if err := rows.Scan(append(row.dest(), &name, &email)...); err != nil {
			return nil, postgres.MapError(err, op, 0)
		}
		out = append(out, domain.ClaimWithLecturer{
			Claim:         row.toDomain(),
			LecturerName:  name,
			LecturerEmail: email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, op, 0)
	}
	return out, nil
}

type claimRow struct {
	c      domain.Claim
	status string
}

func (r *claimRow) dest() []any {
	return []any{
		&r.c.ID, &r.c.LecturerID, &r.c.Period, &r.c.HoursWorked, &r.c.HourlyRate,
		&r.c.Description, &r.c.SupportingDocument, &r.status, &r.c.CreatedAt,
		&r.c.ApprovedAt, &r.c.InvoiceNumber,
	}
}

func (r *claimRow) toDomain() domain.Claim {
	c := r.c
	c.Status = domain.ClaimStatus(r.status)
	c.CreatedAt = c.CreatedAt.UTC()
	if c.ApprovedAt != nil {
		t := c.ApprovedAt.UTC()
		c.ApprovedAt = &t
	}
	return c
}

func scanClaim(row pgx.Row) (domain.Claim, error) {
	var r claimRow
	if err := row.Scan(r.dest()...); err != nil {
		return domain.Claim{}, err
	}
	return r.toDomain(), nil
}
