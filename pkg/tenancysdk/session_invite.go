package tenancysdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvite invites email into companyID. The returned invite carries the
// raw token, which is not retrievable later.
func (s *Session) CreateInvite(ctx context.Context, companyID string, req CreateInviteRequest) (*Invite, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/company/"+url.PathEscape(companyID)+"/invite", req)
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Invite, nil
}

// ListInvites returns the pending invites of companyID.
func (s *Session) ListInvites(ctx context.Context, companyID string) (*InvitesResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/company/"+url.PathEscape(companyID)+"/invites", nil)
	if err != nil {
		return nil, err
	}

	var out InvitesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelInvite deletes an invite.
func (s *Session) CancelInvite(ctx context.Context, companyID, inviteID string) error {
	path := "/company/" + url.PathEscape(companyID) + "/invite/" + url.PathEscape(inviteID)
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
