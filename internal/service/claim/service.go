// Package claim implements the claim lifecycle: submission, review
// transitions with their feedback records, deletion by the owning lecturer,
// and the read projections reviewers and lecturers work from.
package claim

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/heartmarshall/claims-backend/internal/config"
	"github.com/heartmarshall/claims-backend/internal/domain"
)

// claimRepo defines the claim persistence needed by the claim service.
type claimRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Claim, error)
	Create(ctx context.Context, c *domain.Claim) (*domain.Claim, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.ClaimStatus, approvedAt *time.Time) (bool, error)
	DeleteIfStatus(ctx context.Context, id int64, statuses ...domain.ClaimStatus) (bool, error)
	ListByStatus(ctx context.Context, f domain.ClaimFilter) ([]domain.ClaimWithLecturer, error)
	ListByLecturer(ctx context.Context, lecturerID int64) ([]domain.Claim, error)
}

// feedbackRepo defines the feedback ledger operations needed by the claim service.
type feedbackRepo interface {
	Append(ctx context.Context, e *domain.FeedbackEntry) (*domain.FeedbackEntry, error)
	ListByClaim(ctx context.Context, claimID int64) ([]domain.FeedbackEntry, error)
	ListByClaims(ctx context.Context, claimIDs []int64) (map[int64][]domain.FeedbackEntry, error)
}

// userRepo resolves the submitting lecturer's account.
type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// blobStore stores supporting documents. References are opaque.
type blobStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// txManager defines the transaction manager interface needed by the claim service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the claim lifecycle engine.
type Service struct {
	log      *slog.Logger
	claims   claimRepo
	feedback feedbackRepo
	users    userRepo
	blobs    blobStore
	tx       txManager
	limits   config.ClaimsConfig
	now      func() time.Time

	transitions metric.Int64Counter
}

// NewService creates a new claim service instance.
func NewService(
	logger *slog.Logger,
	meter metric.Meter,
	claims claimRepo,
	feedback feedbackRepo,
	users userRepo,
	blobs blobStore,
	tx txManager,
	limits config.ClaimsConfig,
) (*Service, error) {
	transitions, err := meter.Int64Counter("claims.transitions",
		metric.WithDescription("Claim lifecycle transitions applied, by transition name."),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		log:         logger.With("service", "claim"),
		claims:      claims,
		feedback:    feedback,
		users:       users,
		blobs:       blobs,
		tx:          tx,
		limits:      limits,
		now:         func() time.Time { return time.Now().UTC() },
		transitions: transitions,
	}, nil
}
