package http

import (
	"net/http"

	"github.com/fjod/shopdesk/internal/session"
)

// RequireSession holds requests until the gate has rehydrated, then lets only
// authenticated requests through with the user stored in the request context.
func RequireSession(gate *session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Wait(r.Context()); err != nil {
				respondError(w, http.StatusServiceUnavailable, "session_not_ready", "session is still loading")
				return
			}

			user, ok := gate.User()
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), user)))
		})
	}
}
