package tenancysdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateCompany creates a company owned by the session user and makes it
// the active company.
func (s *Session) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/company", req)
	if err != nil {
		return nil, err
	}
	s.refresh(resp)

	var out CompanyResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Company, nil
}

// ListCompanies pages the session user's companies. Zero values use the
// server defaults.
func (s *Session) ListCompanies(ctx context.Context, page, limit int) (*CompaniesResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := "/companies"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out CompaniesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCompany returns a company with its roster.
func (s *Session) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/company/"+url.PathEscape(companyID), nil)
	if err != nil {
		return nil, err
	}

	var out CompanyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Company, nil
}

// UpdateCompany renames a company and optionally changes its logo.
func (s *Session) UpdateCompany(ctx context.Context, companyID string, req UpdateCompanyRequest) (*Company, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/company/"+url.PathEscape(companyID), req)
	if err != nil {
		return nil, err
	}

	var out CompanyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Company, nil
}

// SelectCompany makes companyID the active company.
func (s *Session) SelectCompany(ctx context.Context, companyID string) (*Company, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/company/"+url.PathEscape(companyID)+"/select", nil)
	if err != nil {
		return nil, err
	}
	s.refresh(resp)

	var out CompanyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Company, nil
}

// UpdateMemberRole changes a member's role.
func (s *Session) UpdateMemberRole(ctx context.Context, companyID, userID, role string) (*Member, error) {
	path := "/company/" + url.PathEscape(companyID) + "/member/" + url.PathEscape(userID)
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, path, UpdateMemberRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var out MemberResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

// RemoveMember removes a member from the company.
func (s *Session) RemoveMember(ctx context.Context, companyID, userID string) error {
	path := "/company/" + url.PathEscape(companyID) + "/member/" + url.PathEscape(userID)
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
