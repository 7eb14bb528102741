package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type MemberHandler struct {
	MembershipService *service.MembershipService
}

// HandleUpdateRole changes a member's role.
//
//	@Summary		Change a member's role
//	@Description	ADMIN may only manage MEMBERs and never grants OWNER. The last OWNER cannot be demoted.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			companyId	path		string							true	"Company ID"
//	@Param			memberId	path		string							true	"User ID of the member"
//	@Param			request		body		tenancysdk.UpdateMemberRequest	true	"New role"
//	@Success		200			{object}	tenancysdk.MemberResponse
//	@Failure		400			{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		403			{object}	tenancysdk.ErrorResponse	"Insufficient role or last owner"
//	@Failure		404			{object}	tenancysdk.ErrorResponse	"Unknown member"
//	@Security		BearerAuth
//	@Router			/company/{companyId}/member/{memberId} [patch].
func (h *MemberHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.UpdateMemberRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		role = domain.Role(req.Role)
	}

	id, _ := identityFrom(r.Context())
	companyID, memberID := r.PathValue("companyId"), r.PathValue("memberId")

	m, err := h.MembershipService.UpdateRole(r.Context(), companyID, memberID, role, id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.MemberResponse{Member: tenancysdk.Member{
		ID:       m.UserID,
		Role:     m.Role.String(),
		JoinedAt: m.CreatedAt,
	}})
}

// HandleRemove removes a member from the company.
//
//	@Summary		Remove a member
//	@Description	OWNER removes anyone, ADMIN removes MEMBERs only. The sole OWNER cannot remove themselves.
//	@Tags			Members
//	@Param			companyId	path	string	true	"Company ID"
//	@Param			memberId	path	string	true	"User ID of the member"
//	@Success		204			"Member removed"
//	@Failure		403			{object}	tenancysdk.ErrorResponse	"Insufficient role or sole owner"
//	@Failure		404			{object}	tenancysdk.ErrorResponse	"Unknown member"
//	@Security		BearerAuth
//	@Router			/company/{companyId}/member/{memberId} [delete].
func (h *MemberHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	err := h.MembershipService.RemoveMember(r.Context(), r.PathValue("companyId"), r.PathValue("memberId"), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
