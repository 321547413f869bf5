package claim

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/claims-backend/internal/config"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// Document is an uploaded supporting document.
type Document struct {
	Filename string
	Body     io.Reader
}

// SubmitInput holds parameters for claim submission.
type SubmitInput struct {
	Period      string
	HoursWorked int
	Description string
	Document    *Document
}

// Validate validates the submission against the configured limits.
func (i SubmitInput) Validate(limits config.ClaimsConfig) error {
	var errs []domain.FieldError

	period := strings.TrimSpace(i.Period)
	if period == "" {
		errs = append(errs, domain.FieldError{Field: "period", Message: "required"})
	} else if utf8.RuneCountInString(period) > limits.MaxPeriodLength {
		errs = append(errs, domain.FieldError{Field: "period", Message: fmt.Sprintf("must be at most %d characters", limits.MaxPeriodLength)})
	}

	if i.HoursWorked <= 0 {
		errs = append(errs, domain.FieldError{Field: "hours_worked", Message: "must be positive"})
	} else if i.HoursWorked > limits.MaxHoursPerClaim {
		errs = append(errs, domain.FieldError{Field: "hours_worked", Message: fmt.Sprintf("must be at most %d", limits.MaxHoursPerClaim)})
	}

	description := strings.TrimSpace(i.Description)
	if description == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "required"})
	} else if utf8.RuneCountInString(description) > limits.MaxDescription {
		errs = append(errs, domain.FieldError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", limits.MaxDescription)})
	}

	if i.Document == nil || i.Document.Body == nil || strings.TrimSpace(i.Document.Filename) == "" {
		errs = append(errs, domain.FieldError{Field: "supporting_document", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// validateMessage checks reviewer feedback length. Blank is allowed and
// replaced by the default message.
func validateMessage(msg string, limits config.ClaimsConfig) error {
	if utf8.RuneCountInString(strings.TrimSpace(msg)) > limits.MaxFeedbackLength {
		return domain.NewValidationError("message", fmt.Sprintf("must be at most %d characters", limits.MaxFeedbackLength))
	}
	return nil
}
