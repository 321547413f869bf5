package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/claims-backend/internal/transport/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Claims   *ClaimHandler
	Invoices *InvoiceHandler
	Users    *UserHandler
}

// NewRouter builds the HTTP routes. Health endpoints live at the root; the API lives
// under /api/v1. loginLimit guards the login endpoint. Request-scoped
// middleware (request id, recovery, CORS, auth, access log) is applied by
// the caller around the returned handler.
func NewRouter(h Handlers, loginLimit middleware.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Get("/health", h.Health.Health)

	r.Route("/api/v1", func(api chi.Router) {
		api.With(loginLimit).Post("/auth/login", h.Auth.Login)

		api.Group(func(api chi.Router) {
			api.Use(middleware.RequireActor)

			api.Get("/auth/me", h.Auth.Me)

			api.Route("/claims", func(c chi.Router) {
				c.Post("/", h.Claims.Submit)
				c.Get("/", h.Claims.List)
				c.Get("/mine", h.Claims.Mine)
				c.Get("/quote", h.Claims.Quote)

				c.Route("/{claimID}", func(c chi.Router) {
					c.Get("/", h.Claims.Get)
					c.Delete("/", h.Claims.Delete)
					c.Get("/document", h.Claims.Document)
					c.Post("/forward", h.Claims.Forward)
					c.Post("/reject", h.Claims.Reject)
					c.Post("/approve", h.Claims.Approve)
					c.Post("/invoice", h.Invoices.Issue)
				})
			})

			api.Route("/invoices", func(i chi.Router) {
				i.Get("/", h.Invoices.List)
				i.Get("/{invoiceID}", h.Invoices.Get)
				i.Post("/{invoiceID}/pay", h.Invoices.MarkPaid)
				i.Delete("/{invoiceID}", h.Invoices.Delete)
			})

			api.Get("/dashboard", h.Invoices.Dashboard)

			api.Route("/users", func(u chi.Router) {
				u.Get("/", h.Users.List)
				u.Post("/", h.Users.Create)
				u.Patch("/{userID}", h.Users.Update)
				u.Delete("/{userID}", h.Users.Deactivate)
			})

			api.Get("/lecturers", h.Users.Lecturers)
			api.Get("/lecturers/{lecturerID}/claims", h.Claims.LecturerHistory)
		})
	})

	return r
}
