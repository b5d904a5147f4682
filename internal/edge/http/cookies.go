package http

import (
	"net/http"
	"time"

	"github.com/discoveruz/edge/internal/edge/csrf"
)

const (
	// SessionCookieName carries the signed session token. httpOnly: page
	// scripts never read it.
	SessionCookieName = "session"

	// CSPNonceCookieName carries the per-request CSP nonce so
	// server-rendered pages can embed it in inline script tags. Readable
	// by design, and short-lived.
	CSPNonceCookieName = "__csp_nonce"

	cspNonceMaxAge = 60
	csrfMaxAge     = 24 * 60 * 60
)

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setCSRFCookie is deliberately not httpOnly: the double-submit pattern
// needs client code to read the value back into a header or form field.
func setCSRFCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfMaxAge,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func setCSPNonceCookie(w http.ResponseWriter, nonce string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSPNonceCookieName,
		Value:    nonce,
		Path:     "/",
		MaxAge:   cspNonceMaxAge,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
