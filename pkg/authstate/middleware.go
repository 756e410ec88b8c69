package authstate

import "net/http"

// Middleware stores the manager in every request context so downstream
// handlers can reach it with FromContext or MustFromContext.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	if m == nil {
		panic("authstate: manager must not be nil")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithManager(r.Context(), m)))
		})
	}
}
