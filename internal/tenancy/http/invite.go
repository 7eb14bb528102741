package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type InviteHandler struct {
	InviteService *service.InviteService
}

// HandleCreate invites an email address into the company.
//
//	@Summary		Invite to a company
//	@Description	OWNER may grant any role, ADMIN may grant ADMIN or MEMBER. The token is returned once and emailed to the invitee.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Company ID"
//	@Param			request	body		tenancysdk.CreateInviteRequest	true	"Invitee and role"
//	@Success		201		{object}	tenancysdk.InviteResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		403		{object}	tenancysdk.ErrorResponse	"Role not allowed"
//	@Failure		409		{object}	tenancysdk.ErrorResponse	"Already a member or invite pending"
//	@Security		BearerAuth
//	@Router			/company/{id}/invite [post].
func (h *InviteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.CreateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	// An unknown role is left for the service to report as a field error.
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		role = domain.Role(req.Role)
	}

	id, _ := identityFrom(r.Context())
	created, err := h.InviteService.Create(r.Context(), r.PathValue("id"), req.Email, role, id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tenancysdk.InviteResponse{Invite: toInvite(created.Invite, created.Token)})
}

// HandleList returns the company's pending invites.
//
//	@Summary		List pending invites
//	@Tags			Invites
//	@Produce		json
//	@Param			id	path		string	true	"Company ID"
//	@Success		200	{object}	tenancysdk.InvitesResponse
//	@Failure		403	{object}	tenancysdk.ErrorResponse	"Not a member"
//	@Security		BearerAuth
//	@Router			/company/{id}/invites [get].
func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	invites, err := h.InviteService.ListPending(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenancysdk.InvitesResponse{
		Invites: make([]tenancysdk.Invite, 0, len(invites)),
		Count:   len(invites),
	}
	for _, inv := range invites {
		resp.Invites = append(resp.Invites, toInvite(inv, ""))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCancel deletes an invite.
//
//	@Summary		Cancel an invite
//	@Tags			Invites
//	@Param			companyId	path	string	true	"Company ID"
//	@Param			inviteId	path	string	true	"Invite ID"
//	@Success		204			"Invite cancelled"
//	@Failure		403			{object}	tenancysdk.ErrorResponse	"Insufficient role"
//	@Failure		404			{object}	tenancysdk.ErrorResponse	"Unknown invite"
//	@Security		BearerAuth
//	@Router			/company/{companyId}/invite/{inviteId} [delete].
func (h *InviteHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	err := h.InviteService.Cancel(r.Context(), r.PathValue("companyId"), r.PathValue("inviteId"), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate checks an invite token without consuming it.
//
//	@Summary		Validate an invite token
//	@Tags			Invites
//	@Produce		json
//	@Param			token	query		string	true	"Invite token"
//	@Success		200		{object}	tenancysdk.ValidateInviteResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Expired or already accepted"
//	@Failure		404		{object}	tenancysdk.ErrorResponse	"Unknown token"
//	@Router			/invite/validate [get].
func (h *InviteHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	v, err := h.InviteService.Validate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.ValidateInviteResponse{
		Valid:       v.Valid,
		Email:       v.Email,
		Role:        v.Role.String(),
		CompanyName: v.CompanyName,
		ExpiresAt:   v.ExpiresAt,
	})
}
