package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is an account managed by HR.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Name         string
	Surname      string
	Email        string
	Department   string
	HourlyRate   decimal.Decimal
	LecturerID   *int64
	IsActive     bool
	CreatedAt    time.Time
}

// FullName returns "Name Surname".
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// Actor returns the caller identity for u.
func (u User) Actor() Actor {
	a := Actor{UserID: u.ID, Role: u.Role}
	if u.Role == RoleLecturer {
		a.LecturerID = u.LecturerID
	}
	return a
}

// UserUpdateParams holds the mutable user fields. Nil means unchanged.
type UserUpdateParams struct {
	Name       *string
	Surname    *string
	Email      *string
	Department *string
	Role       *Role
	HourlyRate *decimal.Decimal
}

// Lecturer is the payee profile that claims are filed against.
type Lecturer struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	Department  string
}

// DefaultPhoneNumber is stored for lecturer profiles provisioned without one.
const DefaultPhoneNumber = "Not specified"

// Actor is the authenticated caller of a core operation.
// LecturerID is set only for lecturers with a provisioned profile.
type Actor struct {
	UserID     int64
	Role       Role
	LecturerID *int64
}

// OwnsLecturer reports whether the actor is the given lecturer.
func (a Actor) OwnsLecturer(lecturerID int64) bool {
	return a.Role == RoleLecturer && a.LecturerID != nil && *a.LecturerID == lecturerID
}
