package http

import (
	"errors"
	"net/http"

	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

type VerifyEmailHandler struct {
	Users *service.UserService
}

// ServeHTTP consumes the single-use verification token from the emailed
// link. Used, expired and unknown tokens all get the same answer.
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "Verification token is required"})
		return
	}

	if err := h.Users.VerifyEmail(ctx, token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "This verification link is invalid or has expired"})
			return
		}
		slogx.FromContext(ctx).Error("email verification failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Email verified! You can now log in.",
	})
}
