// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const returningUser = "RETURNING id, username, password_hash, role, name, surname, email, department, hourly_rate, lecturer_id, is_active, created_at"

var userColumns = []string{
	"id", "username", "password_hash", "role", "name", "surname", "email",
	"department", "hourly_rate", "lecturer_id", "is_active", "created_at",
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// GetByUsername returns a user by username.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, sq.Eq{"username": username}, 0)
}

// List returns users ordered by role then surname. activeOnly hides
// deactivated accounts.
func (r *Repo) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	b := postgres.Builder.
		Select(userColumns...).
		From("users").
		OrderBy("role", "surname", "name", "id")
	if activeOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "users", 0)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, postgres.MapError(err, "users", 0)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "users", 0)
	}
	return users, nil
}

// Count returns the number of active users.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, `SELECT count(*) FROM users WHERE is_active`).
		Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "users count", 0)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new user and returns the persisted domain.User.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query, args, err := postgres.Builder.
		Insert("users").
		Columns("username", "password_hash", "role", "name", "surname", "email", "department", "hourly_rate", "lecturer_id", "is_active").
		Values(u.Username, u.PasswordHash, string(u.Role), u.Name, u.Surname, u.Email, u.Department, u.HourlyRate, u.LecturerID, true).
		Suffix(returningUser).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user: %w", err)
	}

	created, err := scanUser(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user", 0)
	}
	return &created, nil
}

// Update applies the non-nil fields of p to user id.
func (r *Repo) Update(ctx context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error) {
	b := postgres.Builder.Update("users").Where(sq.Eq{"id": id})

	set := 0
	if p.Name != nil {
		b = b.Set("name", *p.Name)
		set++
	}
	if p.Surname != nil {
		b = b.Set("surname", *p.Surname)
		set++
	}
	if p.Email != nil {
		b = b.Set("email", *p.Email)
		set++
	}
	if p.Department != nil {
		b = b.Set("department", *p.Department)
		set++
	}
	if p.Role != nil {
		b = b.Set("role", string(*p.Role))
		set++
	}
	if p.HourlyRate != nil {
		b = b.Set("hourly_rate", *p.HourlyRate)
		set++
	}
	if set == 0 {
		return r.GetByID(ctx, id)
	}

	query, args, err := b.Suffix(returningUser).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user: %w", err)
	}

	updated, err := scanUser(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return &updated, nil
}

// LinkLecturer points user id at a lecturer profile.
func (r *Repo) LinkLecturer(ctx context.Context, id, lecturerID int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE users SET lecturer_id = $2 WHERE id = $1`, id, lecturerID)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Deactivate marks user id inactive. Deactivating an inactive user is a no-op.
func (r *Repo) Deactivate(ctx context.Context, id int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE users SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func (r *Repo) getOne(ctx context.Context, where sq.Eq, id int64) (*domain.User, error) {
	query, args, err := postgres.Builder.
		Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user: %w", err)
	}

	u, err := scanUser(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return &u, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &role, &u.Name, &u.Surname, &u.Email,
		&u.Department, &u.HourlyRate, &u.LecturerID, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
