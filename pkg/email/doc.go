// Package email sends transactional mail (currently only password reset
// links) through Postmark in production, or a logging sender in development.
package email
