package authstate

import "github.com/containercalc/containercalc/pkg/auth"

// AuthState is a point-in-time snapshot of the client's authentication state.
// User is nil when nobody is signed in. Loading is true only between Start
// being called and the initial session fetch settling; it never flips back
// to true afterwards.
type AuthState struct {
	User    *auth.User
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s AuthState) Authenticated() bool {
	return s.User != nil
}
