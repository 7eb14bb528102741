package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/memory"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tenancy-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// testClock is a settable clock shared by every service of a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMessage struct {
	To, Subject, Body string
}

// recordingNotifier captures messages and optionally fails.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Body: body})
	return n.err
}

type fixture struct {
	store    *sqlite.Store
	clock    *testClock
	notifier *recordingNotifier

	sessions    *SessionIssuer
	auth        *AuthService
	users       *UserService
	mfa         *MFAService
	memberships *MembershipService
	companies   *CompanyService
	invites     *InviteService
}

var epoch = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeyManager("tenancy-test")
	require.NoError(t, err)

	box, err := cryptox.NewSecretBox([]byte("test master key"))
	require.NoError(t, err)

	clock := &testClock{now: epoch}
	notifier := &recordingNotifier{}
	sessions := NewSessionIssuer(keys, "tenancy-test", 0, memory.NewDenylistWithClock(clock.Now), clock.Now)
	mfa := &MFAService{Store: st, Secrets: box, Issuer: "Tenancy", Now: clock.Now}

	return &fixture{
		store:       st,
		clock:       clock,
		notifier:    notifier,
		sessions:    sessions,
		auth:        &AuthService{Store: st, Sessions: sessions, MFA: mfa, Now: clock.Now},
		users:       &UserService{Store: st},
		mfa:         mfa,
		memberships: &MembershipService{Store: st},
		companies:   &CompanyService{Store: st, Now: clock.Now},
		invites: &InviteService{
			Store:       st,
			Sessions:    sessions,
			Notifier:    notifier,
			FrontendURL: "http://app.test",
			Now:         clock.Now,
		},
	}
}

func (f *fixture) signup(t *testing.T, email, name string) domain.User {
	t.Helper()
	u, _, err := f.auth.Signup(context.Background(), email, "secret1", name)
	require.NoError(t, err)
	return u
}

func (f *fixture) user(t *testing.T, id string) domain.User {
	t.Helper()
	u, err := f.store.Users().GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) createCompany(t *testing.T, owner domain.User, name string) domain.Company {
	t.Helper()
	c, err := f.companies.Create(context.Background(), name, nil, owner.ID)
	require.NoError(t, err)
	return c.Company
}

// join adds u to c with role through an accepted invite.
func (f *fixture) join(t *testing.T, inviter domain.User, c domain.Company, u domain.User, role domain.Role) {
	t.Helper()
	ctx := context.Background()

	created, err := f.invites.Create(ctx, c.ID, u.Email, role, inviter.ID)
	require.NoError(t, err)

	_, err = f.invites.Accept(ctx, created.Token, f.callerFor(t, u), nil)
	require.NoError(t, err)
}

func (f *fixture) callerFor(t *testing.T, u domain.User) Caller {
	t.Helper()
	session, err := f.sessions.Issue(context.Background(), u.ID, "")
	require.NoError(t, err)
	id, err := f.sessions.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	return Authenticated(id)
}

func (f *fixture) memberCount(t *testing.T, companyID string) int {
	t.Helper()
	roster, err := f.store.Memberships().ListForCompany(context.Background(), companyID)
	require.NoError(t, err)
	return len(roster)
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}
