package http

import (
	"net/http"
	"strconv"

	"github.com/discoveruz/edge/internal/edge/domain"
	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/sanitize"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/validate"
	"github.com/discoveruz/edge/pkg/cryptox"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

// maxContactBodyBytes is the contact endpoint's own ceiling, far below
// the shared API limit. A legitimate submission is a few KB at most.
const maxContactBodyBytes = 10 << 10

type ContactHandler struct {
	ContactService *service.ContactService
	Limiter        *ratelimit.Limiter
	EmailSecret    []byte
}

// ServeHTTP runs the contact pipeline in a fixed order: decode under the
// size ceiling, rate limit on IP+email BEFORE validation (garbage costs
// quota too), validate, then a signature double-check on the message
// body that validation's character rules may have let through.
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var form validate.ContactForm
	if !decodeJSON(w, r, maxContactBodyBytes, &form) {
		return
	}

	// Correlation fingerprint only; the raw payload is never logged.
	payloadHash := cryptox.FingerprintToken(form.Name + "|" + form.Email + "|" + form.Message)

	ip := httpx.ClientIP(r)
	key := ratelimit.ClientKey(ip, form.Email, h.EmailSecret)
	result := h.Limiter.CheckAndIncrement(ctx, key)
	if !result.Allowed {
		log.Warn("contact submission rate limited", "ip", ip, "payload", payloadHash)
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

	if sanitize.ContainsSuspiciousPattern(form.Message) {
		log.Warn("contact submission carried suspicious content", "ip", ip, "payload", payloadHash)
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{"message": "Invalid characters detected"},
		})
		return
	}

	h.ContactService.Submit(ctx, domain.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
	})

	log.Info("contact submission accepted", "subject", form.Subject, "payload", payloadHash)
	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Thank you for your message! We'll get back to you within 24 hours.",
	})
}
