package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/discoveruz/edge/pkg/slogx"
	"github.com/getsentry/sentry-go"
)

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in reverse order, so the first middleware
// listed is the outermost (runs first on the way in).
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RecoverMiddleware converts panics into a generic 500 response. The panic
// and stack are logged and reported to Sentry; nothing internal reaches
// the client.
func RecoverMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetExtra("panic", rec)
						scope.SetExtra("stack", string(debug.Stack()))
						sentry.CaptureMessage("panic in request")
					})

					slogx.FromContext(r.Context()).Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
					)

					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "Something went wrong. Please try again later.",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
