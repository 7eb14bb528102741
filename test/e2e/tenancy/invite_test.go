package tenancy_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
	"github.com/stretchr/testify/require"
)

// TestInviteLifecycle walks an owner inviting a new user and an existing
// user, then managing their roles.
func TestInviteLifecycle(t *testing.T) {
	ctx := t.Context()
	client := tenancysdk.NewSDKClient(setupContainer(t, nil))

	alice, _ := signup(t, client, "alice@example.com", "Alice")
	acme, err := alice.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	require.Equal(t, "OWNER", acme.Role)

	// New user through an anonymous accept
	invite, err := alice.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "bob@example.com", Role: "ADMIN"})
	require.NoError(t, err)
	require.NotEmpty(t, invite.Token)

	check, err := client.ValidateInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.True(t, check.Valid)
	require.Equal(t, "bob@example.com", check.Email)

	bob, accepted, err := client.AcceptInvite(ctx, tenancysdk.AcceptInviteRequest{
		Token:    invite.Token,
		Email:    "bob@example.com",
		Password: testPassword,
		Name:     "Bob",
	})
	require.NoError(t, err)
	require.Equal(t, "ADMIN", accepted.Role)
	require.Equal(t, acme.ID, *accepted.User.ActiveCompanyID)

	// Existing user accepting while signed in keeps their own company active
	carol, _ := signup(t, client, "carol@example.com", "Carol")
	own, err := carol.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: "Carol Co"})
	require.NoError(t, err)

	invite, err = bob.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "carol@example.com", Role: "MEMBER"})
	require.NoError(t, err)

	joined, err := carol.AcceptInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.Equal(t, "MEMBER", joined.Role)
	require.Equal(t, own.ID, *joined.User.ActiveCompanyID)

	companies, err := carol.ListCompanies(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, companies.Meta.Total)

	detail, err := alice.GetCompany(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, 3, detail.MemberCount)

	// The OWNER promotes Bob, then removes him
	me, err := bob.Me(ctx)
	require.NoError(t, err)

	_, err = alice.UpdateMemberRole(ctx, acme.ID, me.User.ID, "OWNER")
	require.NoError(t, err)

	err = alice.RemoveMember(ctx, acme.ID, me.User.ID)
	require.NoError(t, err, "an owner may remove another owner")

	_, err = bob.GetCompany(ctx, acme.ID)
	requireErrorCode(t, err, http.StatusForbidden, tenancysdk.ErrorCodeForbidden)
}

func TestInviteCancel(t *testing.T) {
	ctx := t.Context()
	client := tenancysdk.NewSDKClient(setupContainer(t, nil))

	alice, _ := signup(t, client, "alice@example.com", "Alice")
	acme, err := alice.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	invite, err := alice.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "dave@example.com", Role: "MEMBER"})
	require.NoError(t, err)

	_, err = alice.CreateInvite(ctx, acme.ID, tenancysdk.CreateInviteRequest{Email: "dave@example.com", Role: "MEMBER"})
	requireErrorCode(t, err, http.StatusConflict, tenancysdk.ErrorCodeConflict)

	require.NoError(t, alice.CancelInvite(ctx, acme.ID, invite.ID))

	list, err := alice.ListInvites(ctx, acme.ID)
	require.NoError(t, err)
	require.Zero(t, list.Count)

	_, err = client.ValidateInvite(ctx, invite.Token)
	requireErrorCode(t, err, http.StatusNotFound, tenancysdk.ErrorCodeNotFound)
}
