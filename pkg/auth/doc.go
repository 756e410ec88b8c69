// Package auth implements password-based identity for the application:
// registration, authentication, password reset with signed email tokens, and
// a change notifier that broadcasts sign-in/sign-out events to subscribers
// such as the authstate manager.
package auth
