package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/claims-backend/internal/domain"
	"github.com/heartmarshall/claims-backend/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (domain.Actor, error)
}

type actorResolver interface {
	CurrentActor(ctx context.Context, userID int64) (domain.Actor, error)
}

// Auth resolves a bearer token into the request's actor. Requests without a
// token pass through anonymously. An invalid token, or one whose account is
// gone or deactivated, is rejected with 401. The actor's role and lecturer
// link come from the account, not from the token claims.
func Auth(validator tokenValidator, actors actorResolver, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			claimed, err := validator.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := actors.CurrentActor(r.Context(), claimed.UserID)
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			case err != nil:
				logger.ErrorContext(r.Context(), "resolve actor",
					slog.Int64("user_id", claimed.UserID),
					slog.String("error", err.Error()),
				)
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := ctxutil.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects anonymous requests with 401.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.ActorFromCtx(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="claims"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
