package httpx

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
)

// WithUserID records the authenticated user for downstream middleware such
// as RateLimitByUser.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// TokenFromRequest returns the raw session token from an Authorization
// bearer header or, failing that, the named cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")); tok != "" {
			return tok
		}
	}

	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
