package invoice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID   int64
	claims   map[int64]domain.Claim
	invoices map[int64]domain.Invoice
}

func newMemStore() *memStore {
	return &memStore{
		claims:   make(map[int64]domain.Claim),
		invoices: make(map[int64]domain.Invoice),
	}
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	claims, invoices, nextID := maps.Clone(m.claims), maps.Clone(m.invoices), m.nextID
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.claims, m.invoices, m.nextID = claims, invoices, nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addClaim(status domain.ClaimStatus, hours int, rate string) domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := domain.Claim{
		ID:          m.nextID,
		LecturerID:  7,
		Period:      "March",
		HoursWorked: hours,
		HourlyRate:  decimal.RequireFromString(rate),
		Status:      status,
		CreatedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.nextID) * time.Hour),
	}
	if status == domain.ClaimStatusApproved {
		at := c.CreatedAt.Add(time.Hour)
		c.ApprovedAt = &at
	}
	m.claims[c.ID] = c
	return c
}

func (m *memStore) claim(id int64) domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id]
}

func (m *memStore) invoiceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invoices)
}

type memClaims struct{ *memStore }

func (r memClaims) GetByID(_ context.Context, id int64) (*domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return nil, fmt.Errorf("claim %d: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r memClaims) StampInvoiceNumber(_ context.Context, id int64, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok || c.Status != domain.ClaimStatusApproved || c.InvoiceNumber != nil {
		return false, nil
	}
	c.InvoiceNumber = &number
	r.claims[id] = c
	return true, nil
}

func (r memClaims) ClearInvoiceNumber(_ context.Context, id int64, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if ok && c.InvoiceNumber != nil && *c.InvoiceNumber == number {
		c.InvoiceNumber = nil
		r.claims[id] = c
	}
	return nil
}

func (r memClaims) CountByStatus(_ context.Context, status domain.ClaimStatus, unbilled bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.claims {
		if c.Status == status && (!unbilled || !c.IsInvoiced()) {
			n++
		}
	}
	return n, nil
}

func (r memClaims) ListRecentlyApproved(_ context.Context, limit int) ([]domain.ClaimWithLecturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClaimWithLecturer
	for _, c := range r.claims {
		if c.Status == domain.ClaimStatusApproved {
			out = append(out, domain.ClaimWithLecturer{Claim: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApprovedAt.After(*out[j].ApprovedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memInvoices struct{ *memStore }

func (r memInvoices) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	return &inv, nil
}

func (r memInvoices) List(_ context.Context, unpaidOnly bool) ([]domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invoice
	for _, inv := range r.invoices {
		if !unpaidOnly || !inv.IsPaid {
			out = append(out, inv)
		}
	}
	slices.SortFunc(out, func(a, b domain.Invoice) int { return int(b.ID - a.ID) })
	return out, nil
}

func (r memInvoices) Counts(_ context.Context) (total, unpaid int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		total++
		if !inv.IsPaid {
			unpaid++
		}
	}
	return total, unpaid, nil
}

func (r memInvoices) Create(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.ClaimID == inv.ClaimID {
			return nil, fmt.Errorf("invoice for claim %d: %w", inv.ClaimID, domain.ErrAlreadyInvoiced)
		}
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return nil, fmt.Errorf("invoice for claim %d: %w", inv.ClaimID, domain.ErrAlreadyExists)
		}
	}
	r.nextID++
	created := *inv
	created.ID = r.nextID
	r.invoices[created.ID] = created
	return &created, nil
}

func (r memInvoices) MarkPaid(_ context.Context, id int64) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	inv.IsPaid = true
	r.invoices[id] = inv
	return &inv, nil
}

func (r memInvoices) Delete(_ context.Context, id int64) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	delete(r.invoices, id)
	return &inv, nil
}

type fixedCount int

func (c fixedCount) Count(context.Context) (int, error) { return int(c), nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	hr       = domain.Actor{UserID: 1, Role: domain.RoleHR}
	manager  = domain.Actor{UserID: 2, Role: domain.RoleManager}
	issuedAt = time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC)
)

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(logger, noop.NewMeterProvider().Meter("test"),
		memClaims{store}, memInvoices{store}, fixedCount(3), fixedCount(6), store)
	require.NoError(t, err)
	svc.now = func() time.Time { return issuedAt }
	return svc
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNumber(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "INV-20250402-42", Number(issuedAt, 42))
	assert.Equal(t, "INV-20250401-7", Number(time.Date(2025, 4, 2, 5, 0, 0, 0, loc), 7))
}

func TestService_Issue_StampsAndSnapshotsAmount(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 10, "250")

	inv, err := svc.Issue(context.Background(), hr, c.ID)

	require.NoError(t, err)
	assert.Equal(t, Number(issuedAt, c.ID), inv.InvoiceNumber)
	assert.Equal(t, c.ID, inv.ClaimID)
	assert.Equal(t, c.LecturerID, inv.LecturerID)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(2500)), "amount = %s", inv.Amount)
	assert.False(t, inv.IsPaid)
	assert.Equal(t, issuedAt, inv.GeneratedAt)

	stored := store.claim(c.ID)
	require.NotNil(t, stored.InvoiceNumber)
	assert.Equal(t, inv.InvoiceNumber, *stored.InvoiceNumber)
}

func TestService_Issue_Twice_AlreadyInvoiced(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 10, "250")

	_, err := svc.Issue(context.Background(), hr, c.ID)
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), hr, c.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
	assert.Equal(t, 1, store.invoiceCount())
}

func TestService_Issue_NotApproved(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.ClaimStatus{
		domain.ClaimStatusSubmitted,
		domain.ClaimStatusForwarded,
		domain.ClaimStatusRejected,
	} {
		t.Run(status.String(), func(t *testing.T) {
			t.Parallel()
			store := newMemStore()
			svc := newTestService(t, store)
			c := store.addClaim(status, 10, "250")

			_, err := svc.Issue(context.Background(), hr, c.ID)

			require.ErrorIs(t, err, domain.ErrIllegalTransition)
			var te *domain.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, status, te.From)
			assert.Nil(t, store.claim(c.ID).InvoiceNumber)
			assert.Zero(t, store.invoiceCount())
		})
	}
}

func TestService_Issue_Errors(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 10, "250")

	_, err := svc.Issue(context.Background(), manager, c.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Issue(context.Background(), hr, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, store.invoiceCount())
}

func TestService_Issue_Concurrent_OneInvoice(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 3, "100")

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), hr, c.ID)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, store.invoiceCount())
}

func TestService_MarkPaid_Idempotent(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 10, "250")
	inv, err := svc.Issue(context.Background(), hr, c.ID)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), hr, inv.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	again, err := svc.MarkPaid(context.Background(), hr, inv.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)

	_, err = svc.MarkPaid(context.Background(), manager, inv.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.MarkPaid(context.Background(), hr, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Delete_ReopensClaimForBilling(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 10, "250")
	inv, err := svc.Issue(context.Background(), hr, c.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), hr, inv.ID))

	assert.Zero(t, store.invoiceCount())
	assert.Nil(t, store.claim(c.ID).InvoiceNumber, "claim must re-enter the unbilled queue")

	reissued, err := svc.Issue(context.Background(), hr, c.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, reissued.InvoiceNumber)

	err = svc.Delete(context.Background(), hr, 12345)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListAndGet(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()
	first := store.addClaim(domain.ClaimStatusApproved, 1, "250")
	second := store.addClaim(domain.ClaimStatusApproved, 2, "250")
	inv1, err := svc.Issue(ctx, hr, first.ID)
	require.NoError(t, err)
	inv2, err := svc.Issue(ctx, hr, second.ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, hr, inv1.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, hr, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, inv2.ID, all[0].ID)

	unpaid, err := svc.List(ctx, hr, true)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, inv2.ID, unpaid[0].ID)

	got, err := svc.Get(ctx, hr, inv1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)

	_, err = svc.List(ctx, manager, false)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Dashboard(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	for range 7 {
		store.addClaim(domain.ClaimStatusApproved, 1, "250")
	}
	store.addClaim(domain.ClaimStatusSubmitted, 1, "250")
	_, err := svc.Issue(ctx, hr, 1)
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx, hr)
	require.NoError(t, err)
	assert.Equal(t, 6, d.PendingInvoices)
	assert.Equal(t, 1, d.TotalInvoices)
	assert.Equal(t, 1, d.UnpaidInvoices)
	assert.Equal(t, 3, d.TotalLecturers)
	assert.Equal(t, 6, d.TotalUsers)
	require.Len(t, d.RecentlyApproved, recentlyApprovedLimit)
	assert.Equal(t, int64(7), d.RecentlyApproved[0].ID)

	_, err = svc.Dashboard(ctx, manager)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Issue_ExistingInvoiceRowRollsBackStamp(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := newTestService(t, store)
	c := store.addClaim(domain.ClaimStatusApproved, 4, "250")
	// An invoice row for the claim without the claim carrying its number.
	store.mu.Lock()
	store.nextID++
	store.invoices[store.nextID] = domain.Invoice{ID: store.nextID, InvoiceNumber: "INV-20250101-x", ClaimID: c.ID}
	store.mu.Unlock()

	_, err := svc.Issue(context.Background(), hr, c.ID)

	require.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
	assert.Nil(t, store.claim(c.ID).InvoiceNumber, "stamp must roll back with the failed insert")
	assert.Equal(t, 1, store.invoiceCount())
}
