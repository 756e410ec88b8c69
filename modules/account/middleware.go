package account

import (
	"net/http"

	"github.com/containercalc/containercalc/pkg/handler"
	"github.com/containercalc/containercalc/pkg/session"
)

// Middleware resolves the session cookie and, when valid, stores the session
// in the request context. Anonymous requests pass through untouched.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := svc.Sessions().Transport().Token(r)
			if err == nil {
				if sess, resolveErr := svc.resolve(r.Context(), token); resolveErr == nil {
					r = r.WithContext(session.WithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that did not resolve to a session. Mount it
// after Middleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			handler.Error(w, http.StatusUnauthorized, "Not signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}
