package testhelper

import (
	"context"
	"testing"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	user := SeedUser(t, pool, domain.RoleLecturer)
	if user.LecturerID == nil {
		t.Fatal("expected lecturer user to be linked to a profile")
	}

	claim := SeedClaim(t, pool, *user.LecturerID, domain.ClaimStatusApproved)

	// Verify claim exists in DB via SELECT.
	var status string
	err := pool.QueryRow(
		context.Background(),
		`SELECT status FROM claims WHERE id = $1`,
		claim.ID,
	).Scan(&status)
	if err != nil {
		t.Fatalf("expected claim in DB, got error: %v", err)
	}

	if status != string(domain.ClaimStatusApproved) {
		t.Fatalf("expected status %q, got %q", domain.ClaimStatusApproved, status)
	}
}
