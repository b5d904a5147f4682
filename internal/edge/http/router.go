package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/discoveruz/edge/internal/edge/csrf"
	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	guard        *csrf.Guard
	limiter      *ratelimit.Limiter
	emailSecret  []byte
	secure       bool
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	redis *redis.Client

	SessionService *service.SessionService
	UserService    *service.UserService
	ContactService *service.ContactService

	// PageHandler serves everything outside /api/; the edge gate wraps
	// it. Defaults to a 404 handler when the pages are hosted elsewhere.
	PageHandler http.Handler
}

func NewRouter(
	guard *csrf.Guard,
	limiter *ratelimit.Limiter,
	emailSecret []byte,
	secure bool,
	buildVersion string,
	st store.Store,
	rdb *redis.Client,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		guard:        guard,
		limiter:      limiter,
		emailSecret:  emailSecret,
		secure:       secure,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		redis:        rdb,
		logger:       logger,
		PageHandler:  http.NotFoundHandler(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RecoverMiddleware(),
		APIBodyLimitMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerContact()
	r.registerAuth()
	r.registerSearch()
	r.registerSystem()
	r.registerPages()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerContact() {
	h := &ContactHandler{
		ContactService: r.ContactService,
		Limiter:        r.limiter,
		EmailSecret:    r.emailSecret,
	}

	// CSRF first; the handler owns the rest of the pipeline order.
	r.Mux.Handle("POST /api/contact",
		httpx.Chain(h,
			CSRFMiddleware(r.guard),
		),
	)

	newsletter := &NewsletterHandler{
		ContactService: r.ContactService,
		Limiter:        r.limiter,
		EmailSecret:    r.emailSecret,
	}
	r.Mux.Handle("POST /api/newsletter",
		httpx.Chain(newsletter,
			CSRFMiddleware(r.guard),
		),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions:    r.SessionService,
		Users:       r.UserService,
		Limiter:     r.limiter,
		EmailSecret: r.emailSecret,
		Secure:      r.secure,
	}
	verifyHandler := &VerifyEmailHandler{Users: r.UserService}
	resetHandler := &PasswordResetHandler{Users: r.UserService}

	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			CSRFMiddleware(r.guard),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			CSRFMiddleware(r.guard),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			CSRFMiddleware(r.guard),
		),
	)

	// Token arrives from an emailed link, so no CSRF; a modest
	// token-bucket limit covers guessing attempts.
	r.Mux.Handle("GET /api/auth/verify-email",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/password-reset/request",
		httpx.Chain(http.HandlerFunc(resetHandler.HandleRequest),
			CSRFMiddleware(r.guard),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(resetHandler.HandleConfirm),
			CSRFMiddleware(r.guard),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSearch() {
	// Read-only and side-effect free; token-bucket limiting is enough.
	r.Mux.Handle("GET /api/search",
		httpx.Chain(SearchHandler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll these frequently; keep limits public-profile.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.redis),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerPages() {
	gate := &EdgeGate{
		Sessions:          r.SessionService,
		Guard:             r.guard,
		Secure:            r.secure,
		Log:               r.logger,
		ProtectedPrefixes: []string{"/dashboard"},
		AuthEntryPaths:    []string{"/login", "/signup"},
	}

	r.Mux.Handle("/", gate.Wrap(r.PageHandler))
}
