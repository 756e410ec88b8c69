package session

import "time"

// Config holds session settings.
type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`  // CookieName is the name of the session cookie.
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"720h"`         // TTL is the session lifetime.
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"false"` // SecureCookies enables the Secure cookie flag.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`  // CleanupInterval for the memory store sweep (0 disables).
}

// DefaultConfig returns session defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		TTL:             30 * 24 * time.Hour,
		SecureCookies:   false,
		CleanupInterval: 5 * time.Minute,
	}
}
