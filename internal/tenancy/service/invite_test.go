package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestInviteAcceptAnonymousScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.signup(t, "alice@x.com", "Alice")
	acme := f.createCompany(t, alice, "Acme")

	alice = f.user(t, alice.ID)
	require.Equal(t, acme.ID, *alice.ActiveCompanyID)

	m, err := f.memberships.GetMembership(ctx, alice.ID, acme.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, m.Role)

	created, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", created.Invite.Email)
	require.Equal(t, domain.RoleMember, created.Invite.Role)
	require.Equal(t, epoch.Add(7*24*time.Hour), created.Invite.ExpiresAt)
	require.False(t, created.Invite.Accepted)
	require.Equal(t, cryptox.FingerprintToken(created.Token), created.Invite.TokenHash)

	res, err := f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{
		Email:    "bob@x.com",
		Password: "secret1",
		Name:     "Bob",
	})
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", res.User.Email)
	require.Equal(t, acme.ID, res.Company.ID)
	require.Equal(t, domain.RoleMember, res.Role)
	require.NotEmpty(t, res.Session.Token)

	bob := f.user(t, res.User.ID)
	require.Equal(t, acme.ID, *bob.ActiveCompanyID)

	bm, err := f.memberships.GetMembership(ctx, bob.ID, acme.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, bm.Role)

	inv, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
	require.NoError(t, err)
	require.True(t, inv.Accepted)
	require.Equal(t, bob.ID, *inv.UserID)

	id, err := f.sessions.Verify(ctx, res.Session.Token)
	require.NoError(t, err)
	require.Equal(t, bob.ID, id.UserID)
	require.Equal(t, acme.ID, id.ActiveCompanyID)
}

func TestInviteAcceptIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.signup(t, "alice@x.com", "Alice")
	acme := f.createCompany(t, alice, "Acme")
	bob := f.signup(t, "bob@x.com", "Bob")

	created, err := f.invites.Create(ctx, acme.ID, bob.Email, domain.RoleMember, alice.ID)
	require.NoError(t, err)

	_, err = f.invites.Accept(ctx, created.Token, f.callerFor(t, bob), nil)
	require.NoError(t, err)

	for range 2 {
		_, err = f.invites.Accept(ctx, created.Token, f.callerFor(t, bob), nil)
		require.ErrorIs(t, err, ErrInviteAlreadyAccepted)
		requireKind(t, err, ErrInvalidState)

		_, err = f.invites.Validate(ctx, created.Token)
		require.ErrorIs(t, err, ErrInviteAlreadyAccepted)
	}

	_, err = f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{Email: "bob@x.com", Password: "secret1", Name: "Bob"})
	require.ErrorIs(t, err, ErrInviteAlreadyAccepted)
}

func TestInviteExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.signup(t, "alice@x.com", "Alice")
	acme := f.createCompany(t, alice, "Acme")

	created, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, alice.ID)
	require.NoError(t, err)

	t.Run("valid up to the expiry instant", func(t *testing.T) {
		f.clock.Advance(domain.InviteTTL)
		v, err := f.invites.Validate(ctx, created.Token)
		require.NoError(t, err)
		require.True(t, v.Valid)
		require.Equal(t, "Acme", v.CompanyName)
		require.Equal(t, created.Invite.ExpiresAt, v.ExpiresAt)
	})

	t.Run("rejected after expiry whatever the fields", func(t *testing.T) {
		f.clock.Advance(time.Second)

		_, err := f.invites.Validate(ctx, created.Token)
		require.ErrorIs(t, err, ErrInviteExpired)
		requireKind(t, err, ErrInvalidState)

		_, err = f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{Email: "bob@x.com", Password: "secret1", Name: "Bob"})
		require.ErrorIs(t, err, ErrInviteExpired)

		_, err = f.invites.Accept(ctx, created.Token, Anonymous(), nil)
		require.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("expired invite no longer blocks a new one", func(t *testing.T) {
		_, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, alice.ID)
		require.NoError(t, err)
	})
}

func TestInviteValidateUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.invites.Validate(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrInviteNotFound)
	requireKind(t, err, ErrNotFound)

	_, err = f.invites.Validate(context.Background(), "")
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteCreateRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	admin := f.signup(t, "admin@x.com", "Admin")
	member := f.signup(t, "member@x.com", "Member")
	acme := f.createCompany(t, owner, "Acme")
	f.join(t, owner, acme, admin, domain.RoleAdmin)
	f.join(t, owner, acme, member, domain.RoleMember)

	tests := []struct {
		name  string
		actor domain.User
		email string
		role  domain.Role
		err   error
		kind  error
	}{
		{"admin cannot grant owner", admin, "new1@x.com", domain.RoleOwner, ErrRoleGrantNotAllowed, ErrForbidden},
		{"member cannot invite", member, "new2@x.com", domain.RoleMember, ErrInsufficientRole, ErrForbidden},
		{"existing member", owner, "member@x.com", domain.RoleMember, ErrAlreadyMember, ErrConflict},
		{"bad email", owner, "not-an-email", domain.RoleMember, nil, ErrValidation},
		{"bad role", owner, "new3@x.com", domain.Role("ROOT"), nil, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invites.Create(ctx, acme.ID, tt.email, tt.role, tt.actor.ID)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
			requireKind(t, err, tt.kind)
		})
	}

	t.Run("non-member", func(t *testing.T) {
		outsider := f.signup(t, "outsider@x.com", "Outsider")
		_, err := f.invites.Create(ctx, acme.ID, "new4@x.com", domain.RoleMember, outsider.ID)
		require.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("admin may grant admin and the email is normalised", func(t *testing.T) {
		created, err := f.invites.Create(ctx, acme.ID, " New5@X.com ", domain.RoleAdmin, admin.ID)
		require.NoError(t, err)
		require.Equal(t, "new5@x.com", created.Invite.Email)

		_, err = f.invites.Create(ctx, acme.ID, "new5@x.com", domain.RoleMember, owner.ID)
		require.ErrorIs(t, err, ErrInvitePending)
	})
}

func TestInviteNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	acme := f.createCompany(t, owner, "Acme")

	created, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	require.Equal(t, "bob@x.com", msg.To)
	require.Contains(t, msg.Subject, "Acme")
	require.Contains(t, msg.Body, "http://app.test/accept-invite?token="+created.Token)

	t.Run("delivery failure does not fail creation", func(t *testing.T) {
		f.notifier.err = context.DeadlineExceeded
		created, err := f.invites.Create(ctx, acme.ID, "carol@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)

		_, err = f.invites.Validate(ctx, created.Token)
		require.NoError(t, err)
	})
}

func TestInviteAcceptPaths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	acme := f.createCompany(t, owner, "Acme")
	globex := f.createCompany(t, owner, "Globex")

	t.Run("authenticated caller must be the invitee", func(t *testing.T) {
		eve := f.signup(t, "eve@x.com", "Eve")
		created, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)

		_, err = f.invites.Accept(ctx, created.Token, f.callerFor(t, eve), nil)
		require.ErrorIs(t, err, ErrInviteNotAddressed)
		requireKind(t, err, ErrForbidden)
	})

	t.Run("authenticated caller without a user row", func(t *testing.T) {
		created, err := f.invites.Create(ctx, acme.ID, "ghost@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)

		ghost := Authenticated(Identity{UserID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", SessionID: "ghost"})
		_, err = f.invites.Accept(ctx, created.Token, ghost, nil)
		require.ErrorIs(t, err, ErrUserNotFound)
		requireKind(t, err, ErrNotFound)

		inv, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
		require.NoError(t, err)
		require.False(t, inv.Accepted)
	})

	t.Run("authenticated accept keeps an existing active company", func(t *testing.T) {
		carol := f.signup(t, "carol@x.com", "Carol")
		f.join(t, owner, globex, carol, domain.RoleMember)
		require.Equal(t, globex.ID, *f.user(t, carol.ID).ActiveCompanyID)

		created, err := f.invites.Create(ctx, acme.ID, "carol@x.com", domain.RoleAdmin, owner.ID)
		require.NoError(t, err)

		res, err := f.invites.Accept(ctx, created.Token, f.callerFor(t, carol), nil)
		require.NoError(t, err)
		require.Equal(t, carol.ID, res.User.ID)
		require.Equal(t, domain.RoleAdmin, res.Role)
		require.Equal(t, globex.ID, *f.user(t, carol.ID).ActiveCompanyID)
	})

	t.Run("anonymous path requires every field", func(t *testing.T) {
		created, err := f.invites.Create(ctx, acme.ID, "dave@x.com", domain.RoleMember, owner.ID)
		require.NoError(t, err)

		_, err = f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{Email: "dave@x.com"})
		requireKind(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)

		_, err = f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{Email: "mallory@x.com", Password: "secret1", Name: "Mallory"})
		require.ErrorIs(t, err, ErrInviteNotAddressed)
	})

	t.Run("anonymous path rejects registered emails", func(t *testing.T) {
		erin := f.signup(t, "erin@x.com", "Erin")
		created, err := f.invites.Create(ctx, acme.ID, erin.Email, domain.RoleMember, owner.ID)
		require.NoError(t, err)

		_, err = f.invites.Accept(ctx, created.Token, Anonymous(), &NewAccount{Email: "erin@x.com", Password: "secret1", Name: "Erin"})
		require.ErrorIs(t, err, ErrEmailTaken)
		requireKind(t, err, ErrConflict)

		inv, err := f.store.Invites().GetInviteByID(ctx, created.Invite.ID)
		require.NoError(t, err)
		require.False(t, inv.Accepted)
	})
}

func TestInviteConcurrentAcceptCreatesOneMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	acme := f.createCompany(t, owner, "Acme")
	bob := f.signup(t, "bob@x.com", "Bob")

	created, err := f.invites.Create(ctx, acme.ID, bob.Email, domain.RoleMember, owner.ID)
	require.NoError(t, err)

	caller := f.callerFor(t, bob)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.invites.Accept(ctx, created.Token, caller, nil)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t,
			errorsIsAny(err, ErrInviteAlreadyAccepted, ErrAlreadyMember),
			"unexpected error: %v", err,
		)
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 2, f.memberCount(t, acme.ID))
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestInviteCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	member := f.signup(t, "member@x.com", "Member")
	acme := f.createCompany(t, owner, "Acme")
	globex := f.createCompany(t, owner, "Globex")
	f.join(t, owner, acme, member, domain.RoleMember)

	created, err := f.invites.Create(ctx, acme.ID, "bob@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	t.Run("member cannot cancel", func(t *testing.T) {
		err := f.invites.Cancel(ctx, acme.ID, created.Invite.ID, member.ID)
		require.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("invite from another company is not found", func(t *testing.T) {
		err := f.invites.Cancel(ctx, globex.ID, created.Invite.ID, owner.ID)
		require.ErrorIs(t, err, ErrInviteNotFound)
		requireKind(t, err, ErrNotFound)
	})

	t.Run("owner cancels", func(t *testing.T) {
		require.NoError(t, f.invites.Cancel(ctx, acme.ID, created.Invite.ID, owner.ID))

		_, err := f.invites.Validate(ctx, created.Token)
		require.ErrorIs(t, err, ErrInviteNotFound)

		err = f.invites.Cancel(ctx, acme.ID, created.Invite.ID, owner.ID)
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("accepted invites can be cancelled without touching the membership", func(t *testing.T) {
		bob := f.signup(t, "bob@x.com", "Bob")
		inv, err := f.invites.Create(ctx, acme.ID, bob.Email, domain.RoleMember, owner.ID)
		require.NoError(t, err)
		_, err = f.invites.Accept(ctx, inv.Token, f.callerFor(t, bob), nil)
		require.NoError(t, err)

		require.NoError(t, f.invites.Cancel(ctx, acme.ID, inv.Invite.ID, owner.ID))

		_, err = f.memberships.GetMembership(ctx, bob.ID, acme.ID)
		require.NoError(t, err)
	})
}

func TestInviteListPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	member := f.signup(t, "member@x.com", "Member")
	outsider := f.signup(t, "outsider@x.com", "Outsider")
	acme := f.createCompany(t, owner, "Acme")
	f.join(t, owner, acme, member, domain.RoleMember)

	stale, err := f.invites.Create(ctx, acme.ID, "stale@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	f.clock.Advance(6 * 24 * time.Hour)
	first, err := f.invites.Create(ctx, acme.ID, "first@x.com", domain.RoleMember, owner.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.invites.Create(ctx, acme.ID, "second@x.com", domain.RoleAdmin, owner.ID)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)

	list, err := f.invites.ListPending(ctx, acme.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.Invite.ID, list[0].ID)
	require.Equal(t, first.Invite.ID, list[1].ID)
	for _, inv := range list {
		require.NotEqual(t, stale.Invite.ID, inv.ID)
	}

	_, err = f.invites.ListPending(ctx, acme.ID, outsider.ID)
	require.ErrorIs(t, err, ErrNotMember)
}
