/*
Package tenancysdk provides a client for the tenancy service.

# SDKClient vs Session

SDKClient covers the public endpoints and creates Sessions:

	client := tenancysdk.NewSDKClient("http://localhost:8080")

	session, user, err := client.Signup(ctx, tenancysdk.SignupRequest{
		Email:    "alice@example.com",
		Password: "secret1",
		Name:     "Alice",
	})

Session carries the session token and covers everything that needs a
signed-in user:

	company, err := session.CreateCompany(ctx, tenancysdk.CreateCompanyRequest{Name: "Acme"})
	invite, err := session.CreateInvite(ctx, company.ID, tenancysdk.CreateInviteRequest{
		Email: "bob@example.com",
		Role:  "MEMBER",
	})

The server sets the session in a "token" cookie. The SDK reads it from the
response and sends it back as a bearer header.

# Errors

Non-2xx responses are returned as *APIError. Compare with errors.Is against
the predefined values:

	if errors.Is(err, tenancysdk.ErrForbidden) {
		// ...
	}
*/
package tenancysdk
