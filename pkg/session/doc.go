// Package session implements server-side authenticated sessions.
//
// A session is an opaque random token mapped to a user identity with an
// expiry. The Manager issues, resolves, and revokes sessions against a Store
// (Redis in production, in-memory for tests and development) and moves tokens
// over HTTP with a cookie transport. An expired session is indistinguishable
// from an absent one at the API surface.
package session
