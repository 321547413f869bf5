package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

type authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type tokenIssuer interface {
	GenerateAccessToken(actor domain.Actor) (string, error)
}

// AuthHandler serves login and identity endpoints.
type AuthHandler struct {
	accounts authenticator
	tokens   tokenIssuer
	ttl      time.Duration
	log      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. ttl is reported to clients as expiresIn.
func NewAuthHandler(accounts authenticator, tokens tokenIssuer, ttl time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		ttl:      ttl,
		log:      logger.With("handler", "auth"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        userResponse `json:"user"`
}

type meResponse struct {
	UserID     int64  `json:"userId"`
	Role       string `json:"role"`
	LecturerID *int64 `json:"lecturerId,omitempty"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.Actor())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.ttl.Seconds()),
		User:        toUserResponse(*user),
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	writeJSON(w, http.StatusOK, meResponse{
		UserID:     actor.UserID,
		Role:       actor.Role.String(),
		LecturerID: actor.LecturerID,
	})
}
