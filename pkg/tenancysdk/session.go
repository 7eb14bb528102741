package tenancysdk

import (
	"context"
	"net/http"
	"sync"
)

// Session is an authenticated client. Calls that re-issue the session
// cookie (company create and select) update the token in place.
type Session struct {
	client *SDKClient

	mu    sync.RWMutex
	token string
}

// Token returns the current session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) refresh(resp *http.Response) {
	if tok := sessionCookie(resp); tok != "" {
		s.mu.Lock()
		s.token = tok
		s.mu.Unlock()
	}
}

// Me returns the user and their memberships.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// Logout revokes the session. The Session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// AcceptInvite accepts an invite addressed to this session's user.
func (s *Session) AcceptInvite(ctx context.Context, token string) (*AcceptInviteResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/accept-invite", AcceptInviteRequest{Token: token})
	if err != nil {
		return nil, err
	}
	s.refresh(resp)

	var accepted AcceptInviteResponse
	if err := decodeJSON(resp, &accepted, http.StatusOK); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// GetProfile returns the user.
func (s *Session) GetProfile(ctx context.Context) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile changes name and/or email.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/profile", req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ChangePassword replaces the password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
