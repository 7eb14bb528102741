package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll starts TOTP enrollment.
//
//	@Summary		Enroll TOTP
//	@Description	Generates a TOTP secret. Login is not gated until the enrollment is confirmed.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	tenancysdk.MFAEnrollResponse
//	@Failure		409	{object}	tenancysdk.ErrorResponse	"MFA already enabled"
//	@Security		BearerAuth
//	@Router			/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	enrollment, err := h.MFAService.Enroll(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.MFAEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

// HandleConfirm enables MFA.
//
//	@Summary		Confirm TOTP
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	tenancysdk.MFACodeRequest	true	"Current code"
//	@Success		204		"MFA enabled"
//	@Failure		401		{object}	tenancysdk.ErrorResponse	"Wrong code"
//	@Security		BearerAuth
//	@Router			/auth/mfa/confirm [post].
func (h *MFAHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.MFAService.Confirm)
}

// HandleDisable turns MFA off.
//
//	@Summary		Disable TOTP
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	tenancysdk.MFACodeRequest	true	"Current code"
//	@Success		204		"MFA disabled"
//	@Failure		401		{object}	tenancysdk.ErrorResponse	"Wrong code"
//	@Security		BearerAuth
//	@Router			/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.MFAService.Disable)
}

func (h *MFAHandler) withCode(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, userID, code string) error,
) {
	var req tenancysdk.MFACodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, _ := identityFrom(r.Context())
	if err := fn(r.Context(), id.UserID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
