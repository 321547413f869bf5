package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedLecturer creates a lecturer profile with a unique email.
func SeedLecturer(t *testing.T, pool *pgxpool.Pool) domain.Lecturer {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	l := domain.Lecturer{
		Name:        "Lecturer " + suffix,
		Email:       "lecturer-" + suffix + "@example.com",
		PhoneNumber: domain.DefaultPhoneNumber,
		Department:  "Computing",
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO lecturers (name, email, phone_number, department)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		l.Name, l.Email, l.PhoneNumber, l.Department,
	).Scan(&l.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedLecturer: %v", err)
	}

	return l
}

// SeedUser creates an active user with the given role. Lecturers also get a
// linked lecturer profile.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	u := domain.User{
		Username:     "user-" + suffix,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhashnotarealhashnotar",
		Role:         role,
		Name:         "Test",
		Surname:      "User " + suffix,
		Email:        "user-" + suffix + "@example.com",
		HourlyRate:   decimal.NewFromInt(250),
		IsActive:     true,
	}

	if role == domain.RoleLecturer {
		l := SeedLecturer(t, pool)
		u.LecturerID = &l.ID
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role, name, surname, email, hourly_rate, lecturer_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		u.Username, u.PasswordHash, string(u.Role), u.Name, u.Surname, u.Email, u.HourlyRate, u.LecturerID,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return u
}

// SeedClaim creates a claim for lecturerID in the given status. APPROVED
// claims get approved_at set to now.
func SeedClaim(t *testing.T, pool *pgxpool.Pool, lecturerID int64, status domain.ClaimStatus) domain.Claim {
	t.Helper()
	ctx := context.Background()

	c := domain.Claim{
		LecturerID:  lecturerID,
		Period:      "March " + uniqueSuffix(),
		HoursWorked: 10,
		HourlyRate:  decimal.NewFromInt(250),
		Description: "Seeded claim",
		Status:      status,
	}
	if status == domain.ClaimStatusApproved {
		now := time.Now().UTC().Truncate(time.Microsecond)
		c.ApprovedAt = &now
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO claims (lecturer_id, period, hours_worked, hourly_rate, description, status, approved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		c.LecturerID, c.Period, c.HoursWorked, c.HourlyRate, c.Description, string(c.Status), c.ApprovedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedClaim: %v", err)
	}

	return c
}
