package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/stretchr/testify/require"
)

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, domain.Company, map[string]domain.User) {
		f := newFixture(t)
		users := map[string]domain.User{
			"owner":   f.signup(t, "owner@x.com", "Owner"),
			"admin":   f.signup(t, "admin@x.com", "Admin"),
			"admin2":  f.signup(t, "admin2@x.com", "Second Admin"),
			"member":  f.signup(t, "member@x.com", "Member"),
			"member2": f.signup(t, "member2@x.com", "Second Member"),
		}
		acme := f.createCompany(t, users["owner"], "Acme")
		f.join(t, users["owner"], acme, users["admin"], domain.RoleAdmin)
		f.join(t, users["owner"], acme, users["admin2"], domain.RoleAdmin)
		f.join(t, users["owner"], acme, users["member"], domain.RoleMember)
		f.join(t, users["owner"], acme, users["member2"], domain.RoleMember)
		return f, acme, users
	}

	tests := []struct {
		name   string
		actor  string
		target string
		err    error
		kind   error
	}{
		{"owner removes admin", "owner", "admin", nil, nil},
		{"owner removes member", "owner", "member", nil, nil},
		{"admin removes member", "admin", "member", nil, nil},
		{"admin cannot remove admin", "admin", "admin2", ErrCannotManageMember, ErrForbidden},
		{"admin cannot remove owner", "admin", "owner", ErrCannotManageMember, ErrForbidden},
		{"member cannot remove member", "member", "member2", ErrInsufficientRole, ErrForbidden},
		{"sole owner cannot leave", "owner", "owner", ErrSoleOwner, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, acme, users := setup(t)
			before := f.memberCount(t, acme.ID)

			err := f.memberships.RemoveMember(ctx, acme.ID, users[tt.target].ID, users[tt.actor].ID)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				requireKind(t, err, tt.kind)
				require.Equal(t, before, f.memberCount(t, acme.ID))
				return
			}
			require.NoError(t, err)
			require.Equal(t, before-1, f.memberCount(t, acme.ID))

			_, err = f.memberships.GetMembership(ctx, users[tt.target].ID, acme.ID)
			require.Error(t, err)
		})
	}

	t.Run("unknown target", func(t *testing.T) {
		f, acme, users := setup(t)
		outsider := f.signup(t, "outsider@x.com", "Outsider")

		err := f.memberships.RemoveMember(ctx, acme.ID, outsider.ID, users["owner"].ID)
		require.ErrorIs(t, err, ErrMemberNotFound)
		requireKind(t, err, ErrNotFound)
	})

	t.Run("non-member actor", func(t *testing.T) {
		f, acme, users := setup(t)
		outsider := f.signup(t, "outsider@x.com", "Outsider")

		err := f.memberships.RemoveMember(ctx, acme.ID, users["member"].ID, outsider.ID)
		require.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("owner may leave when another owner remains", func(t *testing.T) {
		f, acme, users := setup(t)
		_, err := f.memberships.UpdateRole(ctx, acme.ID, users["admin"].ID, domain.RoleOwner, users["owner"].ID)
		require.NoError(t, err)

		require.NoError(t, f.memberships.RemoveMember(ctx, acme.ID, users["owner"].ID, users["owner"].ID))
	})
}

func TestRemoveMemberClearsActiveCompany(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	bob := f.signup(t, "bob@x.com", "Bob")
	acme := f.createCompany(t, owner, "Acme")
	globex := f.createCompany(t, owner, "Globex")

	f.join(t, owner, acme, bob, domain.RoleMember)
	f.join(t, owner, globex, bob, domain.RoleMember)
	require.Equal(t, acme.ID, *f.user(t, bob.ID).ActiveCompanyID)

	t.Run("pointer elsewhere is untouched", func(t *testing.T) {
		require.NoError(t, f.memberships.RemoveMember(ctx, globex.ID, bob.ID, owner.ID))
		require.Equal(t, acme.ID, *f.user(t, bob.ID).ActiveCompanyID)
	})

	t.Run("pointer at the company is cleared", func(t *testing.T) {
		require.NoError(t, f.memberships.RemoveMember(ctx, acme.ID, bob.ID, owner.ID))
		require.Nil(t, f.user(t, bob.ID).ActiveCompanyID)
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.signup(t, "owner@x.com", "Owner")
	admin := f.signup(t, "admin@x.com", "Admin")
	member := f.signup(t, "member@x.com", "Member")
	acme := f.createCompany(t, owner, "Acme")
	f.join(t, owner, acme, admin, domain.RoleAdmin)
	f.join(t, owner, acme, member, domain.RoleMember)

	t.Run("last owner cannot be demoted", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, owner.ID, domain.RoleAdmin, owner.ID)
		require.ErrorIs(t, err, ErrLastOwnerDemotion)
		requireKind(t, err, ErrForbidden)
	})

	t.Run("admin cannot promote to owner", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, member.ID, domain.RoleOwner, admin.ID)
		require.ErrorIs(t, err, ErrRoleGrantNotAllowed)
	})

	t.Run("admin cannot touch another admin", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, admin.ID, domain.RoleMember, admin.ID)
		require.ErrorIs(t, err, ErrCannotManageMember)
	})

	t.Run("member cannot change roles", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, member.ID, domain.RoleAdmin, member.ID)
		requireKind(t, err, ErrForbidden)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, member.ID, domain.Role("root"), owner.ID)
		requireKind(t, err, ErrValidation)
	})

	t.Run("admin promotes member to admin", func(t *testing.T) {
		m, err := f.memberships.UpdateRole(ctx, acme.ID, member.ID, domain.RoleAdmin, admin.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, m.Role)

		stored, err := f.memberships.GetMembership(ctx, member.ID, acme.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, stored.Role)
	})

	t.Run("demotion allowed once a second owner exists", func(t *testing.T) {
		_, err := f.memberships.UpdateRole(ctx, acme.ID, admin.ID, domain.RoleOwner, owner.ID)
		require.NoError(t, err)

		_, err = f.memberships.UpdateRole(ctx, acme.ID, owner.ID, domain.RoleMember, admin.ID)
		require.NoError(t, err)

		_, err = f.memberships.UpdateRole(ctx, acme.ID, admin.ID, domain.RoleMember, admin.ID)
		require.ErrorIs(t, err, ErrLastOwnerDemotion)
	})
}

func TestListForUserPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.signup(t, "alice@x.com", "Alice")
	var ids []string
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		ids = append(ids, f.createCompany(t, alice, name).ID)
		f.clock.Advance(1)
	}

	t.Run("newest first", func(t *testing.T) {
		page, err := f.memberships.ListForUser(ctx, alice.ID, 1, 2)
		require.NoError(t, err)
		require.Equal(t, 5, page.Total)
		require.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 2)
		require.Equal(t, ids[4], page.Items[0].CompanyID)
		require.Equal(t, "Echo", page.Items[0].Company.Name)
		require.Equal(t, ids[3], page.Items[1].CompanyID)
	})

	t.Run("last partial page", func(t *testing.T) {
		page, err := f.memberships.ListForUser(ctx, alice.ID, 3, 2)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, ids[0], page.Items[0].CompanyID)
	})

	t.Run("defaults and clamping", func(t *testing.T) {
		page, err := f.memberships.ListForUser(ctx, alice.ID, 0, 0)
		require.NoError(t, err)
		require.Equal(t, 1, page.Page)
		require.Equal(t, DefaultPageLimit, page.Limit)
		require.Len(t, page.Items, 5)

		page, err = f.memberships.ListForUser(ctx, alice.ID, 1, 1000)
		require.NoError(t, err)
		require.Equal(t, MaxPageLimit, page.Limit)
	})

	t.Run("no memberships", func(t *testing.T) {
		bob := f.signup(t, "bob@x.com", "Bob")
		page, err := f.memberships.ListForUser(ctx, bob.ID, 1, 10)
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.Equal(t, 0, page.Total)
		require.Equal(t, 0, page.TotalPages)
	})
}

func TestRequireMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := f.signup(t, "alice@x.com", "Alice")
	bob := f.signup(t, "bob@x.com", "Bob")
	acme := f.createCompany(t, alice, "Acme")

	m, err := f.memberships.RequireMembership(ctx, alice.ID, acme.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, m.Role)

	_, err = f.memberships.RequireMembership(ctx, bob.ID, acme.ID)
	require.ErrorIs(t, err, ErrNotMember)
	requireKind(t, err, ErrForbidden)
}
