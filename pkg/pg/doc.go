// Package pg provides PostgreSQL connectivity for the application: pool
// construction with startup retries, goose schema migrations routed through
// the application logger, and error classification helpers for repositories.
package pg
