package http

import (
	"net/http"

	"github.com/discoveruz/edge/internal/edge/csrf"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

// CSRFMiddleware enforces the double-submit check on mutating methods.
// The concrete failure kind is logged only; every client sees the same
// generic 403.
func CSRFMiddleware(guard *csrf.Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !csrf.RequiresProtection(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			err := guard.Validate(csrf.CookieToken(r), csrf.SubmittedToken(r))
			if err != nil {
				log := slogx.FromContext(r.Context())
				log.Warn("csrf validation failed",
					"reason", err,
					"path", r.URL.Path,
					"ip", httpx.ClientIP(r),
				)
				httpx.WriteJSON(w, http.StatusForbidden, errorResponse{Error: "Invalid CSRF token"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
