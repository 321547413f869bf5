package claim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories.
// RunInTx serialises transactions and restores a snapshot when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID   int64
	claims   map[int64]domain.Claim
	feedback []domain.FeedbackEntry
	users    map[int64]domain.User
	base     time.Time

	failCreate error
	failAppend error
	failCommit error
}

func newMemStore() *memStore {
	return &memStore{
		claims: make(map[int64]domain.Claim),
		users:  make(map[int64]domain.User),
		base:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	claims := maps.Clone(m.claims)
	feedback := slices.Clone(m.feedback)
	nextID := m.nextID
	m.mu.Unlock()

	err := fn(ctx)
	if err == nil && m.failCommit != nil {
		err = m.failCommit
	}
	if err != nil {
		m.mu.Lock()
		m.claims, m.feedback, m.nextID = claims, feedback, nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addLecturerUser(rate string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	lecturerID := 1000 + m.id()
	u := domain.User{
		ID:         m.id(),
		Username:   fmt.Sprintf("lecturer%d", lecturerID),
		Role:       domain.RoleLecturer,
		HourlyRate: mustDecimal(rate),
		LecturerID: &lecturerID,
		IsActive:   true,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) feedbackFor(claimID int64) []domain.FeedbackEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FeedbackEntry
	for _, e := range m.feedback {
		if e.ClaimID == claimID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) claim(id int64) (domain.Claim, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	return c, ok
}

func (m *memStore) putClaim(c domain.Claim) domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.id()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.base.Add(time.Duration(c.ID) * time.Minute)
	}
	m.claims[c.ID] = c
	return c
}

// ---------------------------------------------------------------------------
// claimRepo
// ---------------------------------------------------------------------------

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

func (r memClaims) Create(_ context.Context, c *domain.Claim) (*domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	created := *c
	created.ID = r.id()
	created.Status = domain.ClaimStatusSubmitted
	created.CreatedAt = r.base.Add(time.Duration(created.ID) * time.Minute)
	r.claims[created.ID] = created
	return &created, nil
}

func (r memClaims) TransitionStatus(_ context.Context, id int64, from, to domain.ClaimStatus, approvedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	if approvedAt != nil {
		t := *approvedAt
		c.ApprovedAt = &t
	}
	r.claims[id] = c
	return true, nil
}

func (r memClaims) DeleteIfStatus(_ context.Context, id int64, statuses ...domain.ClaimStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok || !slices.Contains(statuses, c.Status) {
		return false, nil
	}
	delete(r.claims, id)
	r.feedback = slices.DeleteFunc(r.feedback, func(e domain.FeedbackEntry) bool { return e.ClaimID == id })
	return true, nil
}

func (r memClaims) ListByStatus(_ context.Context, f domain.ClaimFilter) ([]domain.ClaimWithLecturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClaimWithLecturer
	for _, c := range r.claims {
		if c.Status != f.Status || (f.Unbilled && c.IsInvoiced()) {
			continue
		}
		out = append(out, domain.ClaimWithLecturer{Claim: c, LecturerName: fmt.Sprintf("Lecturer %d", c.LecturerID)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memClaims) ListByLecturer(_ context.Context, lecturerID int64) ([]domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Claim
	for _, c := range r.claims {
		if c.LecturerID == lecturerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---------------------------------------------------------------------------
// feedbackRepo
// ---------------------------------------------------------------------------

type memFeedback struct{ *memStore }

func (r memFeedback) Append(_ context.Context, e *domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAppend != nil {
		return nil, r.failAppend
	}
	if _, ok := r.claims[e.ClaimID]; !ok {
		return nil, fmt.Errorf("claim feedback %d: %w", e.ClaimID, domain.ErrNotFound)
	}
	entry := *e
	entry.ID = r.id()
	entry.CreatedAt = r.base.Add(time.Duration(entry.ID) * time.Minute)
	r.feedback = append(r.feedback, entry)
	return &entry, nil
}

func (r memFeedback) ListByClaim(_ context.Context, claimID int64) ([]domain.FeedbackEntry, error) {
	return r.feedbackFor(claimID), nil
}

func (r memFeedback) ListByClaims(_ context.Context, claimIDs []int64) (map[int64][]domain.FeedbackEntry, error) {
	out := make(map[int64][]domain.FeedbackEntry)
	for _, id := range claimIDs {
		if entries := r.feedbackFor(id); len(entries) > 0 {
			out[id] = entries
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// userRepo
// ---------------------------------------------------------------------------

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

// ---------------------------------------------------------------------------
// blobStore
// ---------------------------------------------------------------------------

type memBlobs struct {
	mu    sync.Mutex
	seq   int
	files map[string][]byte

	failSave   error
	failDelete error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{files: make(map[string][]byte)}
}

func (b *memBlobs) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSave != nil {
		return "", b.failSave
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", domain.StorageError("save document", err)
	}
	b.seq++
	ref := fmt.Sprintf("blob-%d-%s", b.seq, filename)
	b.files[ref] = data
	return ref, nil
}

func (b *memBlobs) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[ref]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", ref, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(_ context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete != nil {
		return b.failDelete
	}
	delete(b.files, ref)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

var errDiskFull = errors.New("disk full")
