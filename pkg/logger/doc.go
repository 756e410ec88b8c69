// Package logger builds configured log/slog loggers for the application.
//
// Loggers are created once at startup from environment configuration and
// passed explicitly to the components that need them. JSON output is the
// production default; text output is for local development.
package logger
