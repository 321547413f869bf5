package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim is a lecturer's request for payment for hours worked in a period.
type Claim struct {
	ID                 int64
	LecturerID         int64
	Period             string
	HoursWorked        int
	HourlyRate         decimal.Decimal
	Description        string
	SupportingDocument *string
	Status             ClaimStatus
	CreatedAt          time.Time
	ApprovedAt         *time.Time
	InvoiceNumber      *string

	// Feedback is populated only by read projections that ask for it.
	Feedback []FeedbackEntry
}

// Amount is always derived, never stored.
func (c Claim) Amount() decimal.Decimal {
	return decimal.NewFromInt(int64(c.HoursWorked)).Mul(c.HourlyRate)
}

// IsInvoiced reports whether the claim has passed the invoice gate.
func (c Claim) IsInvoiced() bool {
	return c.InvoiceNumber != nil && *c.InvoiceNumber != ""
}

// ClaimWithLecturer pairs a claim with the lecturer's display fields for queue views.
type ClaimWithLecturer struct {
	Claim
	LecturerName  string
	LecturerEmail string
}

// ClaimFilter narrows status queue projections.
type ClaimFilter struct {
	Status ClaimStatus
	// Unbilled keeps only claims without an invoice number.
	Unbilled bool
	Limit    int
	Offset   int
}

// FeedbackEntry is an immutable decision record attached to a claim.
type FeedbackEntry struct {
	ID        int64
	ClaimID   int64
	Role      Role
	Message   string
	CreatedAt time.Time
}

// Invoice is the billing record created once for an approved claim.
type Invoice struct {
	ID            int64
	InvoiceNumber string
	ClaimID       int64
	LecturerID    int64
	Amount        decimal.Decimal
	GeneratedAt   time.Time
	IsPaid        bool
}

// Dashboard holds the HR overview counters.
type Dashboard struct {
	PendingInvoices  int
	TotalInvoices    int
	UnpaidInvoices   int
	TotalLecturers   int
	TotalUsers       int
	RecentlyApproved []ClaimWithLecturer
}
