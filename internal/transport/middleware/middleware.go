// Package middleware holds the HTTP middleware shared by every route:
// request ids, panic recovery, CORS, bearer-token authentication, access
// logging and the login rate limiter. The app composes them with chi.Chain.
package middleware

import "net/http"

// Middleware wraps an http.Handler. It is assignable to chi's middleware
// signature.
type Middleware func(http.Handler) http.Handler
