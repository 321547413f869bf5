package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

type invoiceService interface {
	Issue(ctx context.Context, actor domain.Actor, claimID int64) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error)
	Delete(ctx context.Context, actor domain.Actor, invoiceID int64) error
	Get(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error)
	List(ctx context.Context, actor domain.Actor, unpaidOnly bool) ([]domain.Invoice, error)
	Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error)
}

// InvoiceHandler serves HR invoicing endpoints.
type InvoiceHandler struct {
	svc invoiceService
	log *slog.Logger
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(svc invoiceService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, log: logger.With("handler", "invoice")}
}

// Issue handles POST /claims/{claimID}/invoice.
func (h *InvoiceHandler) Issue(w http.ResponseWriter, r *http.Request) {
	claimID, ok := pathID(w, r, "claimID")
	if !ok {
		return
	}

	inv, err := h.svc.Issue(r.Context(), actorOf(r), claimID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceResponse(*inv))
}

// List handles GET /invoices?unpaid=true.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var unpaidOnly bool
	if v := r.URL.Query().Get("unpaid"); v != "" {
		var err error
		if unpaidOnly, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid unpaid")
			return
		}
	}

	invoices, err := h.svc.List(r.Context(), actorOf(r), unpaidOnly)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /invoices/{invoiceID}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invoiceID")
	if !ok {
		return
	}

	inv, err := h.svc.Get(r.Context(), actorOf(r), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(*inv))
}

// MarkPaid handles POST /invoices/{invoiceID}/pay.
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invoiceID")
	if !ok {
		return
	}

	inv, err := h.svc.MarkPaid(r.Context(), actorOf(r), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(*inv))
}

// Delete handles DELETE /invoices/{invoiceID}.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invoiceID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), actorOf(r), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Dashboard handles GET /dashboard.
func (h *InvoiceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		PendingInvoices:  d.PendingInvoices,
		TotalInvoices:    d.TotalInvoices,
		UnpaidInvoices:   d.UnpaidInvoices,
		TotalLecturers:   d.TotalLecturers,
		TotalUsers:       d.TotalUsers,
		RecentlyApproved: toQueueResponse(d.RecentlyApproved),
	})
}
