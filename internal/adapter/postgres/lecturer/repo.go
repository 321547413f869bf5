// Package lecturer implements the Lecturer profile repository using PostgreSQL.
package lecturer

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Repo provides lecturer profile persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lecturer repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var lecturerColumns = []string{"id", "name", "email", "phone_number", "department"}

// GetByID returns a lecturer by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Lecturer, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// GetByEmail returns a lecturer by email, compared case-insensitively.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.Lecturer, error) {
	return r.getOne(ctx, sq.Expr("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))), 0)
}

// List returns all lecturers ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.Lecturer, error) {
	query, args, err := postgres.Builder.
		Select(lecturerColumns...).
		From("lecturers").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list lecturers: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "lecturers", 0)
	}
	defer rows.Close()

	var out []domain.Lecturer
	for rows.Next() {
		l, err := scanLecturer(rows)
		if err != nil {
			return nil, postgres.MapError(err, "lecturers", 0)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "lecturers", 0)
	}
	return out, nil
}

// Count returns the number of lecturer profiles.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, `SELECT count(*) FROM lecturers`).
		Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "lecturers count", 0)
	}
	return n, nil
}

// Create inserts a lecturer profile.
func (r *Repo) Create(ctx context.Context, l *domain.Lecturer) (*domain.Lecturer, error) {
	phone := l.PhoneNumber
	if phone == "" {
		phone = domain.DefaultPhoneNumber
	}

	query, args, err := postgres.Builder.
		Insert("lecturers").
		Columns("name", "email", "phone_number", "department").
		Values(l.Name, l.Email, phone, l.Department).
		Suffix("RETURNING id, name, email, phone_number, department").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert lecturer: %w", err)
	}

	created, err := scanLecturer(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "lecturer", 0)
	}
	return &created, nil
}

func (r *Repo) getOne(ctx context.Context, where sq.Sqlizer, id int64) (*domain.Lecturer, error) {
	query, args, err := postgres.Builder.
		Select(lecturerColumns...).
		From("lecturers").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get lecturer: %w", err)
	}

	l, err := scanLecturer(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "lecturer", id)
	}
	return &l, nil
}

func scanLecturer(row pgx.Row) (domain.Lecturer, error) {
	var l domain.Lecturer
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.PhoneNumber, &l.Department)
	return l, err
}
