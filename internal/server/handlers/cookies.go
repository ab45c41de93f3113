package handlers

import (
	"net/http"
	"time"

	"github.com/iudanet/blogauth/internal/auth"
)

const (
	// SessionCookieName carries the session token
	SessionCookieName = "session"
	// StateCookieName carries the OAuth CSRF state between redirect and callback
	StateCookieName = "oauth_state"

	stateCookieTTL = 10 * time.Minute
)

// CookieConfig controls attributes shared by every cookie this server sets
type CookieConfig struct {
	// Insecure drops the Secure attribute for plain-http development
	Insecure bool
}

func (c CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   !c.Insecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) expired(name string) *http.Cookie {
	ck := c.cookie(name, "", 0)
	ck.MaxAge = -1
	return ck
}

// SetSession sets the session cookie for the full session lifetime
func (c CookieConfig) SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(SessionCookieName, token, auth.SessionTTL))
}

// ClearSession expires the session cookie
func (c CookieConfig) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.expired(SessionCookieName))
}

// SetState sets the short-lived OAuth state cookie
func (c CookieConfig) SetState(w http.ResponseWriter, state string) {
	http.SetCookie(w, c.cookie(StateCookieName, state, stateCookieTTL))
}

// ClearState expires the OAuth state cookie
func (c CookieConfig) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, c.expired(StateCookieName))
}

// cookieValue returns the named cookie value, empty when absent
func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// SessionToken returns the session cookie value of r
func SessionToken(r *http.Request) string {
	return cookieValue(r, SessionCookieName)
}
