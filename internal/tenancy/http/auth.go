package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type AuthHandler struct {
	AuthService   *service.AuthService
	InviteService *service.InviteService
	Cookie        CookieConfig
}

// HandleSignup creates an account and signs it in.
//
//	@Summary		Sign up
//	@Description	Creates an account and sets the session cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenancysdk.SignupRequest	true	"Account details"
//	@Success		201		{object}	tenancysdk.AuthResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error"
//	@Failure		409		{object}	tenancysdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	tenancysdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, session, err := h.AuthService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, session)
	httpx.WriteJSON(w, http.StatusCreated, tenancysdk.AuthResponse{User: toUser(user)})
}

// HandleLogin checks credentials and sets the session cookie.
//
//	@Summary		Log in
//	@Description	Checks email and password. Accounts with MFA also need a TOTP code; without one the response is 401 mfa_required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenancysdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tenancysdk.AuthResponse
//	@Failure		401		{object}	tenancysdk.ErrorResponse	"Invalid credentials or MFA code required"
//	@Failure		429		{object}	tenancysdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, session, err := h.AuthService.Login(r.Context(), req.Email, req.Password, req.TOTP)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, session)
	httpx.WriteJSON(w, http.StatusOK, tenancysdk.AuthResponse{User: toUser(user)})
}

// HandleLogout revokes the presented session and clears the cookie.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Success		204	"Logged out"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), callerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the current user and their memberships.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	tenancysdk.MeResponse
//	@Failure		401	{object}	tenancysdk.ErrorResponse	"Missing or invalid session"
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	me, err := h.AuthService.Me(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMe(me))
}

// HandleAcceptInvite turns an invite into a membership.
//
//	@Summary		Accept an invite
//	@Description	Signed-in callers join as themselves and must be the invited email. Anonymous callers supply email, password and name to create the account.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenancysdk.AcceptInviteRequest	true	"Invite token and, when anonymous, account details"
//	@Success		200		{object}	tenancysdk.AcceptInviteResponse
//	@Failure		400		{object}	tenancysdk.ErrorResponse	"Validation error, expired or already accepted"
//	@Failure		403		{object}	tenancysdk.ErrorResponse	"Invite addressed to another email"
//	@Failure		404		{object}	tenancysdk.ErrorResponse	"Unknown token"
//	@Failure		409		{object}	tenancysdk.ErrorResponse	"Email registered or already a member"
//	@Router			/auth/accept-invite [post].
func (h *AuthHandler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req tenancysdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	caller := callerFrom(r.Context())

	var fields *service.NewAccount
	if caller.IsAnonymous() {
		fields = &service.NewAccount{Email: req.Email, Password: req.Password, Name: req.Name}
	}

	res, err := h.InviteService.Accept(r.Context(), req.Token, caller, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, res.Session)
	httpx.WriteJSON(w, http.StatusOK, tenancysdk.AcceptInviteResponse{
		User:    toUser(res.User),
		Company: toCompany(res.Company, res.Role),
		Role:    res.Role.String(),
	})
}
