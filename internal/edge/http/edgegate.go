package http

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/discoveruz/edge/internal/edge/csrf"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/pkg/httpx"
)

// MaxAPIBodyBytes is the hard request ceiling for the API tree, enforced
// from Content-Length before anything reads the body.
const MaxAPIBodyBytes = 10 << 20

// APIBodyLimitMiddleware rejects oversized API requests from the
// declared Content-Length before any routing or parsing happens.
// Chunked uploads with no declared length are caught later by the
// per-handler MaxBytesReader ceilings.
func APIBodyLimitMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") && r.ContentLength > MaxAPIBodyBytes {
				httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EdgeGate is the request-edge middleware for page routes: session
// verification and redirects, stale-cookie cleanup, CSP nonce and
// security headers, and CSRF cookie minting. API routes only get the
// size ceiling; their protection lives in the route chain.
//
// The step order is fixed. Size limiting runs before any parsing,
// auth redirects run before CSP/CSRF setup so redirect responses skip
// header wiring, and CSRF minting runs last and only when missing.
type EdgeGate struct {
	Sessions *service.SessionService
	Guard    *csrf.Guard
	Secure   bool
	Log      *slog.Logger

	// ProtectedPrefixes need a valid session; AuthEntryPaths bounce
	// already-authenticated visitors back to the dashboard.
	ProtectedPrefixes []string
	AuthEntryPaths    []string
}

func (g *EdgeGate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			if r.ContentLength > MaxAPIBodyBytes {
				httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request too large"})
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		rawToken := sessionToken(r)
		sess := g.Sessions.GetSession(r.Context(), rawToken)

		if sess == nil && g.isProtected(r.URL.Path) {
			if rawToken != "" {
				clearSessionCookie(w, g.Secure)
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		if sess != nil && g.isAuthEntry(r.URL.Path) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		// Cookie cleanup is the gate's job; the verifier stays read-only.
		if rawToken != "" && sess == nil {
			clearSessionCookie(w, g.Secure)
		}

		nonce, err := newCSPNonce()
		if err != nil {
			g.Log.Error("failed to generate csp nonce", "error", err)
			writeServerError(w)
			return
		}
		g.setSecurityHeaders(w, nonce)
		setCSPNonceCookie(w, nonce, g.Secure)

		if !g.Guard.Verify(csrf.CookieToken(r)) {
			token, err := g.Guard.Issue()
			if err != nil {
				g.Log.Error("failed to issue csrf token", "error", err)
				writeServerError(w)
				return
			}
			setCSRFCookie(w, token, g.Secure)
		}

		next.ServeHTTP(w, r)
	})
}

func (g *EdgeGate) isProtected(path string) bool {
	for _, p := range g.ProtectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (g *EdgeGate) isAuthEntry(path string) bool {
	for _, p := range g.AuthEntryPaths {
		if path == p {
			return true
		}
	}
	return false
}

// newCSPNonce returns 16 random bytes in standard base64, the value both
// the header and the cookie carry for this one response.
func newCSPNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (g *EdgeGate) setSecurityHeaders(w http.ResponseWriter, nonce string) {
	// Nonce-based script-src, no unsafe-inline or unsafe-eval. The
	// allowlist covers the Yandex Maps loader and its tile/static hosts.
	csp := strings.Join([]string{
		"default-src 'self'",
		fmt.Sprintf("script-src 'self' 'nonce-%s' https://api-maps.yandex.ru https://*.yandex.ru https://yastatic.net", nonce),
		"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://yastatic.net",
		"font-src 'self' https://fonts.gstatic.com",
		"img-src 'self' data: https: blob:",
		"connect-src 'self' https://*.yandex.ru https://api-maps.yandex.ru https://yastatic.net",
		"frame-src 'self'",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'self'",
		"upgrade-insecure-requests",
	}, "; ")

	h := w.Header()
	h.Set("Content-Security-Policy", csp)
	h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(self), payment=()")
	h.Set("X-XSS-Protection", "1; mode=block")
}
