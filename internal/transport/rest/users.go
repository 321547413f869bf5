package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/internal/service/account"
)

type accountService interface {
	CreateUser(ctx context.Context, actor domain.Actor, input account.CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, userID int64, input account.UpdateUserInput) (*domain.User, error)
	DeactivateUser(ctx context.Context, actor domain.Actor, userID int64) error
	ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	ListLecturers(ctx context.Context, actor domain.Actor) ([]domain.Lecturer, error)
}

// UserHandler serves HR account management endpoints.
type UserHandler struct {
	svc accountService
	log *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc accountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: logger.With("handler", "user")}
}

type createUserRequest struct {
	Username   string           `json:"username"`
	Password   string           `json:"password"`
	Role       string           `json:"role"`
	Name       string           `json:"name"`
	Surname    string           `json:"surname"`
	Email      string           `json:"email"`
	Department string           `json:"department"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
}

type updateUserRequest struct {
	Name       *string          `json:"name"`
	Surname    *string          `json:"surname"`
	Email      *string          `json:"email"`
	Department *string          `json:"department"`
	Role       *string          `json:"role"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	u, err := h.svc.CreateUser(r.Context(), actorOf(r), account.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		Name:       req.Name,
		Surname:    req.Surname,
		Email:      req.Email,
		Department: req.Department,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(*u))
}

// Update handles PATCH /users/{userID}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	input := account.UpdateUserInput{
		Name:       req.Name,
		Surname:    req.Surname,
		Email:      req.Email,
		Department: req.Department,
		HourlyRate: req.HourlyRate,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	u, err := h.svc.UpdateUser(r.Context(), actorOf(r), id, input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

// Deactivate handles DELETE /users/{userID}.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.DeactivateUser(r.Context(), actorOf(r), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Lecturers handles GET /lecturers.
func (h *UserHandler) Lecturers(w http.ResponseWriter, r *http.Request) {
	lecturers, err := h.svc.ListLecturers(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	out := make([]lecturerResponse, 0, len(lecturers))
	for _, l := range lecturers {
		out = append(out, lecturerResponse{
			ID:          l.ID,
			Name:        l.Name,
			Email:       l.Email,
			PhoneNumber: l.PhoneNumber,
			Department:  l.Department,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
