package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName identifies the opaque session cookie
const CookieName = "sentinel_session"

// CookieConfig holds session cookie settings
type CookieConfig struct {
	Secure bool // HTTPS only
	TTL    time.Duration
}

// EnsureSessionID returns the request's session ID, issuing a fresh one in
// an httpOnly cookie when the request carries none (or an invalid one).
func EnsureSessionID(w http.ResponseWriter, r *http.Request, config CookieConfig) string {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}

// ClearSessionCookie deletes the session cookie
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
