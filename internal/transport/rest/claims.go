package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/service/claim"
)

// multipartOverhead is the allowance for form fields around the document.
const multipartOverhead = 1 << 20

type claimService interface {
	Submit(ctx context.Context, actor domain.Actor, input claim.SubmitInput) (*domain.Claim, error)
	Forward(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	Reject(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	Approve(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error)
	Delete(ctx context.Context, actor domain.Actor, claimID int64) error
	ListByStatus(ctx context.Context, actor domain.Actor, status domain.ClaimStatus) ([]domain.ClaimWithLecturer, error)
	ListByLecturer(ctx context.Context, actor domain.Actor, lecturerID int64) ([]domain.Claim, error)
	ClaimWithFeedback(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Claim, error)
	QuoteAmount(ctx context.Context, actor domain.Actor, hours int) (decimal.Decimal, error)
	OpenDocument(ctx context.Context, actor domain.Actor, claimID int64) (io.ReadCloser, string, error)
}

// ClaimHandler serves claim submission, review and read endpoints.
type ClaimHandler struct {
	svc         claimService
	maxDocument int64
	log         *slog.Logger
}

// NewClaimHandler creates a ClaimHandler. maxDocument bounds the uploaded
// document size accepted before the body is rejected outright.
func NewClaimHandler(svc claimService, maxDocument int64, logger *slog.Logger) *ClaimHandler {
	return &ClaimHandler{
		svc:         svc,
		maxDocument: maxDocument,
		log:         logger.With("handler", "claim"),
	}
}

type reviewRequest struct {
	Message string `json:"message"`
}

type quoteResponse struct {
	Hours  int             `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
}

// Submit handles POST /claims as multipart/form-data with fields period,
// hours_worked, description and a document file part.
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	limit := h.maxDocument + multipartOverhead
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	hours, err := strconv.Atoi(strings.TrimSpace(r.FormValue("hours_worked")))
	if err != nil {
		writeServiceError(w, r, h.log, domain.NewValidationError("hours_worked", "must be a whole number"))
		return
	}

	input := claim.SubmitInput{
		Period:      r.FormValue("period"),
		HoursWorked: hours,
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("document")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid document part")
		return
	default:
		defer file.Close()
		input.Document = &claim.Document{Filename: header.Filename, Body: file}
	}

	c, err := h.svc.Submit(r.Context(), actorOf(r), input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClaimResponse(*c))
}

// List handles GET /claims?status=SUBMITTED.
func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.ClaimStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))

	claims, err := h.svc.ListByStatus(r.Context(), actorOf(r), status)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(claims))
}

// Mine handles GET /claims/mine for the calling lecturer.
func (h *ClaimHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	var lecturerID int64
	if actor.LecturerID != nil {
		lecturerID = *actor.LecturerID
	}

	claims, err := h.svc.ListByLecturer(r.Context(), actor, lecturerID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimsResponse(claims))
}

// LecturerHistory handles GET /lecturers/{lecturerID}/claims.
func (h *ClaimHandler) LecturerHistory(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := pathID(w, r, "lecturerID")
	if !ok {
		return
	}

	claims, err := h.svc.ListByLecturer(r.Context(), actorOf(r), lecturerID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimsResponse(claims))
}

// Get handles GET /claims/{claimID}.
func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "claimID")
	if !ok {
		return
	}

	c, err := h.svc.ClaimWithFeedback(r.Context(), actorOf(r), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimResponse(*c))
}

// Document handles GET /claims/{claimID}/document.
func (h *ClaimHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "claimID")
	if !ok {
		return
	}

	rc, ref, err := h.svc.OpenDocument(r.Context(), actorOf(r), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("claim-%d%s", id, filepath.Ext(ref)),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.WarnContext(r.Context(), "stream document", slog.Int64("claim_id", id), slog.String("error", err.Error()))
	}
}

// Delete handles DELETE /claims/{claimID}.
func (h *ClaimHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "claimID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), actorOf(r), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Forward handles POST /claims/{claimID}/forward.
func (h *ClaimHandler) Forward(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Forward)
}

// Reject handles POST /claims/{claimID}/reject.
func (h *ClaimHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Reject)
}

// Approve handles POST /claims/{claimID}/approve.
func (h *ClaimHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Approve)
}

// review runs a reviewer transition. The JSON body with a message is optional.
func (h *ClaimHandler) review(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor domain.Actor, claimID int64, message string) (*domain.Claim, error),
) {
	id, ok := pathID(w, r, "claimID")
	if !ok {
		return
	}
	var req reviewRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	c, err := apply(r.Context(), actorOf(r), id, req.Message)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimResponse(*c))
}

// Quote handles GET /claims/quote?hours=N.
func (h *ClaimHandler) Quote(w http.ResponseWriter, r *http.Request) {
	hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
	if err != nil {
		writeServiceError(w, r, h.log, domain.NewValidationError("hours_worked", "must be a whole number"))
		return
	}

	amount, err := h.svc.QuoteAmount(r.Context(), actorOf(r), hours)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{Hours: hours, Amount: amount})
}
