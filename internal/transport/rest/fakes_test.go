package rest

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/service/account"
	"github.com/heartmarshall/claims-backend/internal/service/claim"
)

// Function-field fakes. A nil func fails loudly with a panic so that tests
// only stub what the route under test calls.

type claimServiceFake struct {
	SubmitFunc            func(ctx context.Context, actor domain.Actor, input claim.SubmitInput) (*domain.Claim, error)
	ForwardFunc           func(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	RejectFunc            func(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	ApproveFunc           func(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	DeleteFunc            func(ctx context.Context, actor domain.Actor, claimID int64) error
	ListByStatusFunc      func(ctx context.Context, actor domain.Actor, status domain.ClaimStatus) ([]domain.ClaimWithLecturer, error)
	ListByLecturerFunc    func(ctx context.Context, actor domain.Actor, lecturerID int64) ([]domain.Claim, error)
	ClaimWithFeedbackFunc func(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Claim, error)
	QuoteAmountFunc       func(ctx context.Context, actor domain.Actor, hours int) (decimal.Decimal, error)
	OpenDocumentFunc      func(ctx context.Context, actor domain.Actor, claimID int64) (io.ReadCloser, string, error)
}

func (f *claimServiceFake) Submit(ctx context.Context, actor domain.Actor, input claim.SubmitInput) (*domain.Claim, error) {
	return f.SubmitFunc(ctx, actor, input)
}

func (f *claimServiceFake) Forward(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return f.ForwardFunc(ctx, actor, claimID, message)
}

func (f *claimServiceFake) Reject(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return f.RejectFunc(ctx, actor, claimID, message)
}

func (f *claimServiceFake) Approve(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error) {
	return f.ApproveFunc(ctx, actor, claimID, message)
}

func (f *claimServiceFake) Delete(ctx context.Context, actor domain.Actor, claimID int64) error {
	return f.DeleteFunc(ctx, actor, claimID)
}

func (f *claimServiceFake) ListByStatus(ctx context.Context, actor domain.Actor, status domain.ClaimStatus) ([]domain.ClaimWithLecturer, error) {
	return f.ListByStatusFunc(ctx, actor, status)
}

func (f *claimServiceFake) ListByLecturer(ctx context.Context, actor domain.Actor, lecturerID int64) ([]domain.Claim, error) {
	return f.ListByLecturerFunc(ctx, actor, lecturerID)
}

func (f *claimServiceFake) ClaimWithFeedback(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Claim, error) {
	return f.ClaimWithFeedbackFunc(ctx, actor, claimID)
}

func (f *claimServiceFake) QuoteAmount(ctx context.Context, actor domain.Actor, hours int) (decimal.Decimal, error) {
	return f.QuoteAmountFunc(ctx, actor, hours)
}

func (f *claimServiceFake) OpenDocument(ctx context.Context, actor domain.Actor, claimID int64) (io.ReadCloser, string, error) {
	return f.OpenDocumentFunc(ctx, actor, claimID)
}

type invoiceServiceFake struct {
	IssueFunc     func(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Invoice, error)
	MarkPaidFunc  func(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error)
	DeleteFunc    func(ctx context.Context, actor domain.Actor, invoiceID int64) error
	GetFunc       func(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error)
	ListFunc      func(ctx context.Context, actor domain.Actor, unpaidOnly bool) ([]domain.Invoice, error)
	DashboardFunc func(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error)
}

func (f *invoiceServiceFake) Issue(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Invoice, error) {
	return f.IssueFunc(ctx, actor, claimID)
}

func (f *invoiceServiceFake) MarkPaid(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	return f.MarkPaidFunc(ctx, actor, invoiceID)
}

func (f *invoiceServiceFake) Delete(ctx context.Context, actor domain.Actor, invoiceID int64) error {
	return f.DeleteFunc(ctx, actor, invoiceID)
}

func (f *invoiceServiceFake) Get(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	return f.GetFunc(ctx, actor, invoiceID)
}

func (f *invoiceServiceFake) List(ctx context.Context, actor domain.Actor, unpaidOnly bool) ([]domain.Invoice, error) {
	return f.ListFunc(ctx, actor, unpaidOnly)
}

func (f *invoiceServiceFake) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	return f.DashboardFunc(ctx, actor)
}

type accountServiceFake struct {
	CreateUserFunc     func(ctx context.Context, actor domain.Actor, input account.CreateUserInput) (*domain.User, error)
	UpdateUserFunc     func(ctx context.Context, actor domain.Actor, userID int64, input account.UpdateUserInput) (*domain.User, error)
	DeactivateUserFunc func(ctx context.Context, actor domain.Actor, userID int64) error
	ListUsersFunc      func(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	ListLecturersFunc  func(ctx context.Context, actor domain.Actor) ([]domain.Lecturer, error)
	AuthenticateFunc   func(ctx context.Context, username, password string) (*domain.User, error)
}

func (f *accountServiceFake) CreateUser(ctx context.Context, actor domain.Actor, input account.CreateUserInput) (*domain.User, error) {
	return f.CreateUserFunc(ctx, actor, input)
}

func (f *accountServiceFake) UpdateUser(ctx context.Context, actor domain.Actor, userID int64, input account.UpdateUserInput) (*domain.User, error) {
	return f.UpdateUserFunc(ctx, actor, userID, input)
}

func (f *accountServiceFake) DeactivateUser(ctx context.Context, actor domain.Actor, userID int64) error {
	return f.DeactivateUserFunc(ctx, actor, userID)
}

func (f *accountServiceFake) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	return f.ListUsersFunc(ctx, actor)
}

func (f *accountServiceFake) ListLecturers(ctx context.Context, actor domain.Actor) ([]domain.Lecturer, error) {
	return f.ListLecturersFunc(ctx, actor)
}

func (f *accountServiceFake) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return f.AuthenticateFunc(ctx, username, password)
}

type tokenIssuerFake struct {
	issued []domain.Actor
}

func (f *tokenIssuerFake) GenerateAccessToken(actor domain.Actor) (string, error) {
	f.issued = append(f.issued, actor)
	return "signed-token", nil
}
