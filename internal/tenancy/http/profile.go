package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type ProfileHandler struct {
	UserService *service.UserService
}

// HandleGet returns the caller's profile.
//
//	@Summary		Get profile
//	@Tags			Profile
//	@Produce		json
//	@Success		200	{object}	tenancysdk.AuthResponse
//	@Security		BearerAuth
//	@Router			/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	user, err := h.UserService.GetProfile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.AuthResponse{User: toUser(user)})
}

// HandleUpdate changes name and/or email.
//
//	@Summary		Update profile
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenancysdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	tenancysdk.AuthResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		409		{object}	tenancysdk.ErrorResponse	"Email already registered"
//	@Security		BearerAuth
//	@Router			/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, _ := identityFrom(r.Context())
	user, err := h.UserService.UpdateProfile(r.Context(), id.UserID, service.UpdateProfile{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.AuthResponse{User: toUser(user)})
}

// HandleChangePassword replaces the password.
//
//	@Summary		Change password
//	@Tags			Profile
//	@Accept			json
//	@Param			request	body	tenancysdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		401		{object}	tenancysdk.ErrorResponse	"Wrong current password"
//	@Security		BearerAuth
//	@Router			/password [put].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, _ := identityFrom(r.Context())
	if err := h.UserService.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
