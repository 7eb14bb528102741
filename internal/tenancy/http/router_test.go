package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/memory"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tenancy-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// mailbox keeps the last invite link sent to each address.
type mailbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *mailbox) Notify(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range strings.Split(body, "\n") {
		if i := strings.Index(line, "http"); i >= 0 && strings.Contains(line, "/accept-invite?token=") {
			m.links[to] = strings.TrimSpace(line[i:])
		}
	}
	return nil
}

func (m *mailbox) token(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[to]
	require.True(t, ok, "no invite sent to %s", to)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type testServer struct {
	srv    *httptest.Server
	client *tenancysdk.SDKClient
	mail   *mailbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeyManager("tenancy-test")
	require.NoError(t, err)
	box, err := cryptox.NewSecretBox([]byte("test master key"))
	require.NoError(t, err)

	denylist := memory.NewDenylist()
	sessions := service.NewSessionIssuer(keys, "tenancy-test", 0, denylist, nil)
	mfa := &service.MFAService{Store: st, Secrets: box, Issuer: "Tenancy"}
	mail := &mailbox{links: map[string]string{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(keys.KeySet, "test", st, denylist, logger, "http://app.test")
	router.Sessions = sessions
	router.AuthService = &service.AuthService{Store: st, Sessions: sessions, MFA: mfa}
	router.UserService = &service.UserService{Store: st}
	router.MFAService = mfa
	router.CompanyService = &service.CompanyService{Store: st}
	router.MembershipService = &service.MembershipService{Store: st}
	router.InviteService = &service.InviteService{
		Store:       st,
		Sessions:    sessions,
		Notifier:    mail,
		FrontendURL: "http://app.test",
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, client: tenancysdk.NewSDKClient(srv.URL), mail: mail}
}

func (ts *testServer) signup(t *testing.T, email, name string) (*tenancysdk.Session, *tenancysdk.User) {
	t.Helper()
	session, user, err := ts.client.Signup(t.Context(), tenancysdk.SignupRequest{
		Email: email, Password: "secret1", Name: name,
	})
	require.NoError(t, err)
	return session, user
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *tenancysdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestSignupSetsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.srv.URL+"/auth/signup", "application/json",
		strings.NewReader(`{"email":"Alice@Example.com","password":"secret1","name":"Alice"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, int(jwtx.DefaultSessionTTL.Seconds()), cookie.MaxAge)

	// The cookie alone authenticates
	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	me, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)
	body, err := io.ReadAll(me.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"email":"alice@example.com"`)
}

func TestErrorResponses(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()
	alice, _ := ts.signup(t, "alice@example.com", "Alice")

	tests := []struct {
		name   string
		call   func() error
		status int
		code   string
	}{
		{
			name: "no session",
			call: func() error {
				_, err := ts.client.NewSession("").Me(ctx)
				return err
			},
			status: http.StatusUnauthorized,
			code:   tenancysdk.ErrorCodeUnauthenticated,
		},
		{
			name: "garbage session",
			call: func() error {
				_, err := ts.client.NewSession("not-a-jwt").Me(ctx)
				return err
			},
			status: http.StatusUnauthorized,
			code:   tenancysdk.ErrorCodeUnauthenticated,
		},
		{
			name: "duplicate email",
			call: func() error {
				_, _, err := ts.client.Signup(ctx, tenancysdk.SignupRequest{
					Email: "ALICE@example.com", Password: "secret1", Name: "Other Alice",
				})
				return err
			},
			status: http.StatusConflict,
			code:   tenancysdk.ErrorCodeConflict,
		},
		{
			name: "wrong password",
			call: func() error {
				_, _, err := ts.client.Login(ctx, tenancysdk.LoginRequest{Email: "alice@example.com", Password: "nope"})
				return err
			},
			status: http.StatusUnauthorized,
			code:   tenancysdk.ErrorCodeUnauthenticated,
		},
		{
			name: "unknown company",
			call: func() error {
				_, err := alice.GetCompany(ctx, "01JUNKNOWNCOMPANY0000000000")
				return err
			},
			status: http.StatusForbidden,
			code:   tenancysdk.ErrorCodeForbidden,
		},
		{
			name: "unknown invite token",
			call: func() error {
				_, err := ts.client.ValidateInvite(ctx, "missing")
				return err
			},
			status: http.StatusNotFound,
			code:   tenancysdk.ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireAPIError(t, tt.call(), tt.status, tt.code)
		})
	}

	t.Run("validation details", func(t *testing.T) {
		_, _, err := ts.client.Signup(ctx, tenancysdk.SignupRequest{Email: "bad", Password: "123", Name: "A"})
		requireAPIError(t, err, http.StatusBadRequest, tenancysdk.ErrorCodeValidation)

		var apiErr *tenancysdk.APIError
		require.True(t, errors.As(err, &apiErr))
		fields := map[string]bool{}
		for _, d := range apiErr.Details {
			fields[d.Field] = true
		}
		require.Equal(t, map[string]bool{"email": true, "password": true, "name": true}, fields)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.srv.URL+"/auth/login", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogoutRevokesBearerToken(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()
	alice, _ := ts.signup(t, "alice@example.com", "Alice")

	_, err := alice.Me(ctx)
	require.NoError(t, err)

	require.NoError(t, alice.Logout(ctx))

	_, err = ts.client.NewSession(alice.Token()).Me(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, tenancysdk.ErrorCodeUnauthenticated)
}

func TestInviteFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	alice, _ := ts.signup(t, "alice@example.com", "Alice")
	acme, err := alice.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	require.Equal(t, "OWNER", acme.Role)

	invite, err := alice.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "bob@example.com", Role: "ADMIN"})
	require.NoError(t, err)
	require.NotEmpty(t, invite.Token)
	require.Equal(t, invite.Token, ts.mail.token(t, "bob@example.com"))

	pending, err := alice.ListInvites(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, 1, pending.Count)
	require.Empty(t, pending.Invites[0].Token)

	check, err := ts.client.ValidateInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.True(t, check.Valid)
	require.Equal(t, "Acme", check.CompanyName)

	// Anonymous accept creates Bob's account and signs him in
	bob, accepted, err := ts.client.AcceptInvite(ctx, tenancysdk.AcceptInviteRequest{
		Token: invite.Token, Email: "bob@example.com", Password: "secret1", Name: "Bob",
	})
	require.NoError(t, err)
	require.Equal(t, "ADMIN", accepted.Role)
	require.Equal(t, acme.ID, accepted.Company.ID)
	require.NotNil(t, accepted.User.ActiveCompanyID)
	require.Equal(t, acme.ID, *accepted.User.ActiveCompanyID)

	me, err := bob.Me(ctx)
	require.NoError(t, err)
	require.Len(t, me.Memberships, 1)

	t.Run("token is single use", func(t *testing.T) {
		_, _, err := ts.client.AcceptInvite(ctx, tenancysdk.AcceptInviteRequest{
			Token: invite.Token, Email: "carol@example.com", Password: "secret1", Name: "Carol",
		})
		requireAPIError(t, err, http.StatusBadRequest, tenancysdk.ErrorCodeInvalidState)
	})

	t.Run("admin cannot grant owner", func(t *testing.T) {
		_, err := bob.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "carol@example.com", Role: "OWNER"})
		requireAPIError(t, err, http.StatusForbidden, tenancysdk.ErrorCodeForbidden)
	})

	t.Run("unknown role is a field error", func(t *testing.T) {
		_, err := alice.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "carol@example.com", Role: "KING"})
		requireAPIError(t, err, http.StatusBadRequest, tenancysdk.ErrorCodeValidation)
	})

	t.Run("company detail lists members", func(t *testing.T) {
		detail, err := bob.GetCompany(ctx, acme.ID)
		require.NoError(t, err)
		require.Equal(t, 2, detail.MemberCount)
		require.Len(t, detail.Members, 2)
	})

	t.Run("owner demotes and removes", func(t *testing.T) {
		member, err := alice.UpdateMemberRole(ctx, acme.ID, accepted.User.ID, "MEMBER")
		require.NoError(t, err)
		require.Equal(t, "MEMBER", member.Role)

		require.NoError(t, alice.RemoveMember(ctx, acme.ID, accepted.User.ID))

		_, err = bob.GetCompany(ctx, acme.ID)
		requireAPIError(t, err, http.StatusForbidden, tenancysdk.ErrorCodeForbidden)
	})

	t.Run("sole owner cannot leave", func(t *testing.T) {
		me, err := alice.Me(ctx)
		require.NoError(t, err)
		err = alice.RemoveMember(ctx, acme.ID, me.User.ID)
		requireAPIError(t, err, http.StatusForbidden, tenancysdk.ErrorCodeForbidden)
	})
}

func TestCompanyListAndSelect(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()
	alice, _ := ts.signup(t, "alice@example.com", "Alice")

	var ids []string
	for _, name := range []string{"One", "Two", "Three"} {
		c, err := alice.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: name})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	page, err := alice.ListCompanies(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, tenancysdk.PageMeta{Total: 3, Page: 1, Limit: 2, TotalPages: 2}, page.Meta)

	selected, err := alice.SelectCompany(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, ids[0], selected.ID)

	profile, err := alice.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile.ActiveCompanyID)
	require.Equal(t, ids[0], *profile.ActiveCompanyID)

	updated, err := alice.UpdateCompany(ctx, ids[0], tenancysdk.UpdateCompanyRequest{Name: "Uno"})
	require.NoError(t, err)
	require.Equal(t, "Uno", updated.Name)

	logo := "https://uno.test/logo.png"
	_, err = alice.UpdateCompany(ctx, ids[0], tenancysdk.UpdateCompanyRequest{Logo: &logo})
	requireAPIError(t, err, http.StatusBadRequest, tenancysdk.ErrorCodeValidation)
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Denylist)

	jwks, err := ts.client.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.srv.URL+"/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "http://app.test", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
