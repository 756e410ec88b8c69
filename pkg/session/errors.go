package session

import "errors"

var (
	// ErrSessionNotFound indicates no session was found for the token.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionExpired indicates the session has passed its expiry.
	ErrSessionExpired = errors.New("session: expired")

	// ErrInvalidSession indicates a malformed or incomplete session value.
	ErrInvalidSession = errors.New("session: invalid")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session: token generation failed")

	// ErrNoToken indicates the request carried no session token.
	ErrNoToken = errors.New("session: no token in request")
)
