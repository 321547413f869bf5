package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

type feedbackResponse struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type claimResponse struct {
	ID            int64              `json:"id"`
	LecturerID    int64              `json:"lecturerId"`
	LecturerName  string             `json:"lecturerName,omitempty"`
	LecturerEmail string             `json:"lecturerEmail,omitempty"`
	Period        string             `json:"period"`
	HoursWorked   int                `json:"hoursWorked"`
	HourlyRate    decimal.Decimal    `json:"hourlyRate"`
	Amount        decimal.Decimal    `json:"amount"`
	Description   string             `json:"description"`
	HasDocument   bool               `json:"hasDocument"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	ApprovedAt    *time.Time         `json:"approvedAt,omitempty"`
	InvoiceNumber *string            `json:"invoiceNumber,omitempty"`
	Feedback      []feedbackResponse `json:"feedback,omitempty"`
}

type invoiceResponse struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClaimID       int64           `json:"claimId,omitempty"`
	LecturerID    int64           `json:"lecturerId"`
	Amount        decimal.Decimal `json:"amount"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	IsPaid        bool            `json:"isPaid"`
}

type userResponse struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Role       string          `json:"role"`
	Name       string          `json:"name"`
	Surname    string          `json:"surname"`
	Email      string          `json:"email"`
	Department string          `json:"department,omitempty"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	LecturerID *int64          `json:"lecturerId,omitempty"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type lecturerResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Department  string `json:"department,omitempty"`
}

type dashboardResponse struct {
	PendingInvoices  int             `json:"pendingInvoices"`
	TotalInvoices    int             `json:"totalInvoices"`
	UnpaidInvoices   int             `json:"unpaidInvoices"`
	TotalLecturers   int             `json:"totalLecturers"`
	TotalUsers       int             `json:"totalUsers"`
	RecentlyApproved []claimResponse `json:"recentlyApproved"`
}

func toClaimResponse(c domain.Claim) claimResponse {
	resp := claimResponse{
		ID:            c.ID,
		LecturerID:    c.LecturerID,
		Period:        c.Period,
		HoursWorked:   c.HoursWorked,
		HourlyRate:    c.HourlyRate,
		Amount:        c.Amount(),
		Description:   c.Description,
		HasDocument:   c.SupportingDocument != nil,
		Status:        c.Status.String(),
		CreatedAt:     c.CreatedAt,
		ApprovedAt:    c.ApprovedAt,
		InvoiceNumber: c.InvoiceNumber,
	}
	for _, e := range c.Feedback {
		resp.Feedback = append(resp.Feedback, feedbackResponse{
			ID:        e.ID,
			Role:      e.Role.String(),
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		})
	}
	return resp
}

func toQueueResponse(claims []domain.ClaimWithLecturer) []claimResponse {
	out := make([]claimResponse, 0, len(claims))
	for _, c := range claims {
		resp := toClaimResponse(c.Claim)
		resp.LecturerName = c.LecturerName
		resp.LecturerEmail = c.LecturerEmail
		out = append(out, resp)
	}
	return out
}

func toClaimsResponse(claims []domain.Claim) []claimResponse {
	out := make([]claimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, toClaimResponse(c))
	}
	return out
}

func toInvoiceResponse(inv domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClaimID:       inv.ClaimID,
		LecturerID:    inv.LecturerID,
		Amount:        inv.Amount,
		GeneratedAt:   inv.GeneratedAt,
		IsPaid:        inv.IsPaid,
	}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role.String(),
		Name:       u.Name,
		Surname:    u.Surname,
		Email:      u.Email,
		Department: u.Department,
		HourlyRate: u.HourlyRate,
		LecturerID: u.LecturerID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
