package middleware

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

// SessionChecker is satisfied by *session.Gate.
type SessionChecker interface {
	Require() (session.User, error)
}

// RequireSession rejects requests with 401 while no one is logged in.
func RequireSession(gate SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.Require(); err != nil {
				WriteError(w, r, http.StatusUnauthorized, "login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
