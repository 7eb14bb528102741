package tenancysdk

import (
	"context"
	"net/http"
)

// EnrollMFA starts TOTP enrollment. Login is not gated until ConfirmMFA.
func (s *Session) EnrollMFA(ctx context.Context) (*MFAEnrollResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/enroll", nil)
	if err != nil {
		return nil, err
	}

	var out MFAEnrollResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmMFA enables MFA with a current code.
func (s *Session) ConfirmMFA(ctx context.Context, code string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/confirm", MFACodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DisableMFA turns MFA off with a current code.
func (s *Session) DisableMFA(ctx context.Context, code string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/auth/mfa", MFACodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
