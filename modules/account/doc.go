// Package account is the HTTP surface for user accounts: sign-up, sign-in,
// sign-out, the current-session endpoint, and the password-reset flow. It
// glues the password service, the session manager, the auth-change notifier,
// and the mailer together and exposes a chi router to mount.
package account
