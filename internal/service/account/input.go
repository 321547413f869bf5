package account

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

const (
	maxNameLength     = 100
	// maxProfileName bounds "Name Surname" as stored on the lecturer profile.
	maxProfileName    = 100
	maxEmailLength    = 180
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// CreateUserInput holds parameters for account creation.
type CreateUserInput struct {
	Username   string
	Password   string
	Role       domain.Role
	Name       string
	Surname    string
	Email      string
	Department string
	// HourlyRate is optional; lecturers default to the configured rate.
	HourlyRate *decimal.Decimal
}

// Validate validates the create user input.
func (i CreateUserInput) Validate() error {
	var errs []domain.FieldError

	errs = checkText(errs, "username", i.Username, true)
	if n := len(i.Password); n < minPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	} else if n > maxPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at most 72 bytes"})
	}
	if !i.Role.IsValid() {
		errs = append(errs, domain.FieldError{Field: "role", Message: "must be one of LECTURER, COORDINATOR, MANAGER, HR"})
	}
	errs = checkText(errs, "name", i.Name, true)
	errs = checkText(errs, "surname", i.Surname, true)
	if i.Role == domain.RoleLecturer {
		errs = checkProfileName(errs, i.Name, i.Surname)
	}
	errs = checkEmail(errs, i.Email)
	errs = checkText(errs, "department", i.Department, false)
	errs = checkRate(errs, i.HourlyRate)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateUserInput holds parameters for account update.
// All fields are optional (nil = don't change).
type UpdateUserInput struct {
	Name       *string
	Surname    *string
	Email      *string
	Department *string
	Role       *domain.Role
	HourlyRate *decimal.Decimal
}

// Validate validates the update user input.
func (i UpdateUserInput) Validate() error {
	var errs []domain.FieldError

	if i.Name != nil {
		errs = checkText(errs, "name", *i.Name, true)
	}
	if i.Surname != nil {
		errs = checkText(errs, "surname", *i.Surname, true)
	}
	if i.Email != nil {
		errs = checkEmail(errs, *i.Email)
	}
	if i.Department != nil {
		errs = checkText(errs, "department", *i.Department, false)
	}
	if i.Role != nil && !i.Role.IsValid() {
		errs = append(errs, domain.FieldError{Field: "role", Message: "must be one of LECTURER, COORDINATOR, MANAGER, HR"})
	}
	errs = checkRate(errs, i.HourlyRate)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i UpdateUserInput) params() domain.UserUpdateParams {
	return domain.UserUpdateParams{
		Name:       trimmed(i.Name),
		Surname:    trimmed(i.Surname),
		Email:      trimmed(i.Email),
		Department: trimmed(i.Department),
		Role:       i.Role,
		HourlyRate: i.HourlyRate,
	}
}

func checkText(errs []domain.FieldError, field, value string, required bool) []domain.FieldError {
	value = strings.TrimSpace(value)
	switch {
	case value == "" && required:
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	case utf8.RuneCountInString(value) > maxNameLength:
		return append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}

// checkProfileName reports a full name that would not fit the lecturer
// profile even though each part fits the account.
func checkProfileName(errs []domain.FieldError, name, surname string) []domain.FieldError {
	full := domain.User{Name: strings.TrimSpace(name), Surname: strings.TrimSpace(surname)}.FullName()
	if utf8.RuneCountInString(full) > maxProfileName {
		return append(errs, domain.FieldError{Field: "surname", Message: "full name must be at most 100 characters for lecturers"})
	}
	return errs
}

func checkEmail(errs []domain.FieldError, email string) []domain.FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if len(email) > maxEmailLength {
		return append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return append(errs, domain.FieldError{Field: "email", Message: "invalid email"})
	}
	return errs
}

func checkRate(errs []domain.FieldError, rate *decimal.Decimal) []domain.FieldError {
	if rate != nil && rate.IsNegative() {
		return append(errs, domain.FieldError{Field: "hourly_rate", Message: "must not be negative"})
	}
	return errs
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
