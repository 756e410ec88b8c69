package session

import (
	"net/http"
	"time"
)

// CookieTransport moves session tokens over HTTP cookies.
type CookieTransport struct {
	cookieName string
	secure     bool
}

// NewCookieTransport creates a cookie-based token transport.
func NewCookieTransport(cookieName string, secure bool) *CookieTransport {
	return &CookieTransport{cookieName: cookieName, secure: secure}
}

// Token extracts the session token from the request cookie.
func (t *CookieTransport) Token(r *http.Request) (string, error) {
	c, err := r.Cookie(t.cookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoToken
	}
	return c.Value, nil
}

// SetToken stores the session token in a cookie.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken expires the session cookie.
func (t *CookieTransport) ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
