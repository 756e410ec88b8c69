package authstate

import "context"

type ctxKey struct{}

// WithManager stores the manager in the context.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext retrieves the manager stored with WithManager.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	return m, ok
}

// MustFromContext retrieves the manager or panics when none is present. Use
// it only in code paths that cannot run outside a manager scope.
func MustFromContext(ctx context.Context) *Manager {
	m, ok := FromContext(ctx)
	if !ok {
		panic("authstate: manager not found in context")
	}
	return m
}
