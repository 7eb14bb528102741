package tenancysdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// SDKClient is a client for the tenancy service.
// It provides access to unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new tenancy service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an existing session token.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Signup creates an account and returns a session for it.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*Session, *User, error) {
	return c.authenticate(ctx, "/auth/signup", http.StatusCreated, req)
}

// Login signs in. A missing TOTP code for an MFA-enabled account fails with
// ErrMFARequired.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, *User, error) {
	return c.authenticate(ctx, "/auth/login", http.StatusOK, req)
}

func (c *SDKClient) authenticate(ctx context.Context, path string, status int, req any) (*Session, *User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, "", req)
	if err != nil {
		return nil, nil, err
	}
	token := sessionCookie(resp)

	var authResp AuthResponse
	if err := decodeJSON(resp, &authResp, status); err != nil {
		return nil, nil, err
	}
	if token == "" {
		return nil, nil, errors.New("response did not set a session cookie")
	}

	return c.NewSession(token), &authResp.User, nil
}

// ValidateInvite checks an invite token without consuming it.
func (c *SDKClient) ValidateInvite(ctx context.Context, token string) (*ValidateInviteResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/invite/validate?token="+url.QueryEscape(token), "", nil)
	if err != nil {
		return nil, err
	}

	var v ValidateInviteResponse
	if err := decodeJSON(resp, &v, http.StatusOK); err != nil {
		return nil, err
	}
	return &v, nil
}

// AcceptInvite accepts an invite as a new account. Existing users accept
// through Session.AcceptInvite.
func (c *SDKClient) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*Session, *AcceptInviteResponse, error) {
	return acceptInvite(ctx, c, "", req)
}

func acceptInvite(ctx context.Context, c *SDKClient, token string, req AcceptInviteRequest) (*Session, *AcceptInviteResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/accept-invite", token, req)
	if err != nil {
		return nil, nil, err
	}
	newToken := sessionCookie(resp)

	var accepted AcceptInviteResponse
	if err := decodeJSON(resp, &accepted, http.StatusOK); err != nil {
		return nil, nil, err
	}
	if newToken == "" {
		newToken = token
	}

	return c.NewSession(newToken), &accepted, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetJWKS fetches the public keys that verify session tokens.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}
