package http

import (
	"net/http"
	"strconv"

	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/validate"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

type NewsletterHandler struct {
	ContactService *service.ContactService
	Limiter        *ratelimit.Limiter
	EmailSecret    []byte
}

// ServeHTTP handles newsletter signups. Same window as the contact form;
// a signup is just a tiny contact submission as far as abuse goes.
func (h *NewsletterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var form validate.NewsletterForm
	if !decodeJSON(w, r, maxAuthBodyBytes, &form) {
		return
	}

	ip := httpx.ClientIP(r)
	key := ratelimit.ClientKey(ip, form.Email, h.EmailSecret)
	result := h.Limiter.CheckAndIncrement(ctx, key)
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		httpx.WriteJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "Too many requests. Please wait a minute and try again.",
		})
		return
	}

	if fields := form.Validate(); !fields.Ok() {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	h.ContactService.Subscribe(ctx, form.Email)

	log.Info("newsletter signup accepted")
	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "You're subscribed! Watch your inbox for travel ideas.",
	})
}
