// Package feedback implements the append-only feedback ledger using PostgreSQL.
// Entries are never updated; they are removed only together with their claim.
package feedback

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Repo provides feedback persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new feedback repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append inserts a feedback entry and returns it with id and timestamp set.
func (r *Repo) Append(ctx context.Context, e *domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	query, args, err := postgres.Builder.
		Insert("feedback").
		Columns("claim_id", "role", "message").
		Values(e.ClaimID, string(e.Role), e.Message).
		Suffix("RETURNING id, claim_id, role, message, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert feedback: %w", err)
	}

	entry, err := scanEntry(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "claim feedback", e.ClaimID)
	}
	return &entry, nil
}

// ListByClaim returns a claim's feedback in insertion order.
func (r *Repo) ListByClaim(ctx context.Context, claimID int64) ([]domain.FeedbackEntry, error) {
	byClaim, err := r.ListByClaims(ctx, []int64{claimID})
	if err != nil {
		return nil, err
	}
	return byClaim[claimID], nil
}

// ListByClaims returns feedback for several claims grouped by claim id, each
// group in insertion order.
func (r *Repo) ListByClaims(ctx context.Context, claimIDs []int64) (map[int64][]domain.FeedbackEntry, error) {
	out := make(map[int64][]domain.FeedbackEntry, len(claimIDs))
	if len(claimIDs) == 0 {
		return out, nil
	}

	query, args, err := postgres.Builder.
		Select("id", "claim_id", "role", "message", "created_at").
		From("feedback").
		Where(sq.Eq{"claim_id": claimIDs}).
		OrderBy("claim_id", "created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list feedback: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "feedback", 0)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, postgres.MapError(err, "feedback", 0)
		}
		out[e.ClaimID] = append(out[e.ClaimID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "feedback", 0)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (domain.FeedbackEntry, error) {
	var (
		e    domain.FeedbackEntry
		role string
	)
	if err := row.Scan(&e.ID, &e.ClaimID, &role, &e.Message, &e.CreatedAt); err != nil {
		return domain.FeedbackEntry{}, err
	}
	e.Role = domain.Role(role)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
