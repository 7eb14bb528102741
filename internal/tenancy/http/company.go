package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type CompanyHandler struct {
	CompanyService    *service.CompanyService
	MembershipService *service.MembershipService
	Sessions          *service.SessionIssuer
	Cookie            CookieConfig
}

// HandleCreate creates a company owned by the caller.
//
//	@Summary		Create a company
//	@Description	The caller becomes OWNER and the company becomes their active company. The session cookie is re-issued.
//	@Tags			Companies
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenancysdk.CreateCompanyRequest	true	"Company details"
//	@Success		201		{object}	tenancysdk.CompanyResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Security		BearerAuth
//	@Router			/company [post].
func (h *CompanyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.CreateCompanyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, _ := identityFrom(r.Context())
	c, err := h.CompanyService.Create(r.Context(), req.Name, req.Logo, id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.reissue(w, r, id.UserID, c.Company.ID) {
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tenancysdk.CompanyResponse{Company: toCompany(c.Company, c.Role)})
}

// reissue sets a fresh cookie carrying the new active company.
func (h *CompanyHandler) reissue(w http.ResponseWriter, r *http.Request, userID, companyID string) bool {
	session, err := h.Sessions.Issue(r.Context(), userID, companyID)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	h.Cookie.set(w, session)
	return true
}

// HandleList pages the caller's companies, newest membership first.
//
//	@Summary		List my companies
//	@Tags			Companies
//	@Produce		json
//	@Param			page	query		int	false	"Page number (default 1)"
//	@Param			limit	query		int	false	"Page size (default 10, max 100)"
//	@Success		200		{object}	tenancysdk.CompaniesResponse
//	@Security		BearerAuth
//	@Router			/companies [get].
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	id, _ := identityFrom(r.Context())
	result, err := h.MembershipService.ListForUser(r.Context(), id.UserID, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenancysdk.CompaniesResponse{
		Data: make([]tenancysdk.Company, 0, len(result.Items)),
		Meta: tenancysdk.PageMeta{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	}
	for _, m := range result.Items {
		c := toCompany(m.Company, m.Role)
		c.JoinedAt = m.CreatedAt
		resp.Data = append(resp.Data, c)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns a company and its roster to a member.
//
//	@Summary		Get a company
//	@Tags			Companies
//	@Produce		json
//	@Param			id	path		string	true	"Company ID"
//	@Success		200	{object}	tenancysdk.CompanyResponse
//	@Failure		403	{object}	tenancysdk.ErrorResponse	"Not a member"
//	@Security		BearerAuth
//	@Router			/company/{id} [get].
func (h *CompanyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	detail, err := h.CompanyService.Get(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := toCompany(detail.Company, detail.Role)
	c.MemberCount = len(detail.Members)
	c.Members = make([]tenancysdk.Member, 0, len(detail.Members))
	for _, m := range detail.Members {
		c.Members = append(c.Members, toMember(m))
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.CompanyResponse{Company: c})
}

// HandleUpdate renames a company and optionally changes its logo.
//
//	@Summary		Update a company
//	@Description	OWNER or ADMIN only. The name is required. The logo is optional and an empty logo removes it.
//	@Tags			Companies
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Company ID"
//	@Param			request	body		tenancysdk.UpdateCompanyRequest	true	"Fields to change"
//	@Success		200		{object}	tenancysdk.CompanyResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		403		{object}	tenancysdk.ErrorResponse	"Not a member or insufficient role"
//	@Security		BearerAuth
//	@Router			/company/{id} [patch].
func (h *CompanyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.UpdateCompanyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, _ := identityFrom(r.Context())
	companyID := r.PathValue("id")

	company, err := h.CompanyService.Update(r.Context(), companyID, service.UpdateCompany{
		Name: req.Name,
		Logo: req.Logo,
	}, id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.MembershipService.GetMembership(r.Context(), id.UserID, companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenancysdk.CompanyResponse{Company: toCompany(company, m.Role)})
}

// HandleSelect switches the caller's active company.
//
//	@Summary		Select the active company
//	@Description	The session cookie is re-issued with the new active company.
//	@Tags			Companies
//	@Produce		json
//	@Param			id	path		string	true	"Company ID"
//	@Success		200	{object}	tenancysdk.CompanyResponse
//	@Failure		404	{object}	tenancysdk.ErrorResponse	"Unknown company or not a member"
//	@Security		BearerAuth
//	@Router			/company/{id}/select [post].
func (h *CompanyHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	c, err := h.CompanyService.Select(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.reissue(w, r, id.UserID, c.Company.ID) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tenancysdk.CompanyResponse{Company: toCompany(c.Company, c.Role)})
}
