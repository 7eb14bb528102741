package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

type callerKey struct{}

func withCaller(ctx context.Context, c service.Caller) context.Context {
	ctx = context.WithValue(ctx, callerKey{}, c)
	if id, ok := c.Identity(); ok {
		ctx = httpx.WithUserID(ctx, id.UserID)
		ctx = slogx.With(ctx, "user_id", id.UserID)
	}
	return ctx
}

// callerFrom returns Anonymous when no middleware ran.
func callerFrom(ctx context.Context) service.Caller {
	c, ok := ctx.Value(callerKey{}).(service.Caller)
	if !ok {
		return service.Anonymous()
	}
	return c
}

// identityFrom is only meaningful behind RequireSession.
func identityFrom(ctx context.Context) (service.Identity, bool) {
	return callerFrom(ctx).Identity()
}

// RequireSession rejects requests without a valid session with 401.
func RequireSession(sessions *service.SessionIssuer, cookieName string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httpx.TokenFromRequest(r, cookieName)
			if token == "" {
				tenancysdk.ErrUnauthenticated.WriteError(w)
				return
			}

			id, err := sessions.Verify(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), service.Authenticated(id))))
		})
	}
}

// OptionalSession resolves the caller but never rejects.
func OptionalSession(sessions *service.SessionIssuer, cookieName string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := sessions.VerifyOptional(r.Context(), httpx.TokenFromRequest(r, cookieName))
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}
