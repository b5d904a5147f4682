package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/validate"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

const maxAuthBodyBytes = 64 << 10

// AuthHandler serves signup, login and logout. Login and signup share
// the fixed-window limiter keyed on IP+email so credential stuffing
// burns quota per target account, not just per source address.
type AuthHandler struct {
	Sessions    *service.SessionService
	Users       *service.UserService
	Limiter     *ratelimit.Limiter
	EmailSecret []byte
	Secure      bool
}

func (h *AuthHandler) limit(w http.ResponseWriter, r *http.Request, email string) bool {
	ip := httpx.ClientIP(r)
	key := ratelimit.ClientKey(ip, email, h.EmailSecret)
	result := h.Limiter.CheckAndIncrement(r.Context(), key)
	if result.Allowed {
		return true
	}

	slogx.FromContext(r.Context()).Warn("auth request rate limited", "ip", ip, "path", r.URL.Path)
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
	httpx.WriteJSON(w, http.StatusTooManyRequests, errorResponse{
		Error: "Too many attempts. Please wait a minute and try again.",
	})
	return false
}

func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var form validate.SignupForm
	if !decodeJSON(w, r, maxAuthBodyBytes, &form) {
		return
	}

	if !h.limit(w, r, form.Email) {
		return
	}

	if fields := form.Validate(); !fields.Ok() {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	user, err := h.Users.Signup(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
				Error:  "Validation failed",
				Fields: map[string]string{"email": "An account with this email already exists"},
			})
			return
		}
		log.Error("signup failed", "err", err)
		writeServerError(w)
		return
	}

	log.Info("account created", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Account created! Please check your email to verify your address.",
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var form validate.LoginForm
	if !decodeJSON(w, r, maxAuthBodyBytes, &form) {
		return
	}

	if !h.limit(w, r, form.Email) {
		return
	}

	if fields := form.Validate(); !fields.Ok() {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	session, err := h.Sessions.Login(ctx, form.Email, form.Password, form.Remember)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			// Same answer for unknown email and wrong password.
			httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid email or password"})
		case errors.Is(err, service.ErrEmailNotVerified):
			httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "Please verify your email address before logging in"})
		default:
			log.Error("login failed", "err", err)
			writeServerError(w)
		}
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt, h.Secure)
	log.Info("login succeeded", "user_id", session.UserID)
	httpx.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Logout(ctx, sessionToken(r)); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		writeServerError(w)
		return
	}

	clearSessionCookie(w, h.Secure)
	httpx.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
