package http

import (
	"net/http"
	"time"

	"github.com/couchcryptid/odp-dashboard-service/internal/session"
)

// Session identifiers travel in a header for API clients and a cookie for browsers.
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "odp_session"
)

const sessionCookieMaxAge = 24 * time.Hour

// sessionID returns the caller's session identifier, or "" when none is
// present or it is malformed.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); session.ValidID(id) {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	return ""
}

// ensureSession returns the caller's session identifier, issuing a new one
// when missing, and echoes it back in both transports.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	id := sessionID(r)
	if id == "" {
		id = session.NewID()
	}
	w.Header().Set(SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
