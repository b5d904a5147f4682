package http

import (
	"errors"
	"net/http"

	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/validate"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/discoveruz/edge/pkg/slogx"
)

type PasswordResetHandler struct {
	Users *service.UserService
}

// HandleRequest issues a reset link. The response is 200 whether the
// account exists or not.
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form validate.PasswordResetRequestForm
	if !decodeJSON(w, r, maxAuthBodyBytes, &form) {
		return
	}

	if fields := form.Validate(); !fields.Ok() {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	if err := h.Users.RequestPasswordReset(ctx, form.Email); err != nil {
		slogx.FromContext(ctx).Error("password reset request failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "If an account exists for that email, a reset link is on its way.",
	})
}

// HandleConfirm redeems the single-use token and sets the new password.
func (h *PasswordResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form validate.PasswordResetConfirmForm
	if !decodeJSON(w, r, maxAuthBodyBytes, &form) {
		return
	}

	if fields := form.Validate(); !fields.Ok() {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	if err := h.Users.ConfirmPasswordReset(ctx, form.Token, form.Password); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "This reset link is invalid or has expired"})
			return
		}
		slogx.FromContext(ctx).Error("password reset confirm failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Password updated. Please log in with your new password.",
	})
}
