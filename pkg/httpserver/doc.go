// Package httpserver wraps net/http serving with graceful shutdown, signal
// handling, and environment-driven configuration.
package httpserver
