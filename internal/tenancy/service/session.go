package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// Identity is a verified session.
type Identity struct {
	UserID string

	// ActiveCompanyID is the snapshot taken when the token was issued. It
	// may be stale, services re-read the user row when it matters.
	ActiveCompanyID string

	SessionID string
	ExpiresAt time.Time
}

// Caller is either an authenticated Identity or anonymous. Only invite
// acceptance accepts both.
type Caller struct {
	identity *Identity
}

// Anonymous is a caller without a valid session.
func Anonymous() Caller { return Caller{} }

// Authenticated wraps a verified identity.
func Authenticated(id Identity) Caller { return Caller{identity: &id} }

// Identity returns the caller's identity, ok is false when anonymous.
func (c Caller) Identity() (Identity, bool) {
	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

func (c Caller) IsAnonymous() bool { return c.identity == nil }

// Session is a signed token ready for the transport.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIssuer signs and verifies session tokens. Tokens are EdDSA JWTs
// carrying the user id as sub and the active company as acid.
type SessionIssuer struct {
	Keys     *jwtx.KeyManager
	Issuer   string
	TTL      time.Duration
	Denylist store.Denylist

	Now func() time.Time
}

// NewSessionIssuer binds the verifier clock to the issuer clock.
func NewSessionIssuer(keys *jwtx.KeyManager, issuer string, ttl time.Duration, denylist store.Denylist, now func() time.Time) *SessionIssuer {
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	keys.Verifier.Now = now

	return &SessionIssuer{
		Keys:     keys,
		Issuer:   issuer,
		TTL:      ttl,
		Denylist: denylist,
		Now:      now,
	}
}

// Issue signs a session for userID. An empty activeCompanyID omits acid.
func (s *SessionIssuer) Issue(ctx context.Context, userID, activeCompanyID string) (Session, error) {
	now := s.Now()
	claims := jwtx.NewSessionClaims(userID, activeCompanyID, s.Issuer, s.TTL, now)

	token, err := s.Keys.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign session", slog.Any("error", err))
		return Session{}, err
	}

	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify is the mandatory check. Any failure is ErrInvalidSession.
func (s *SessionIssuer) Verify(ctx context.Context, token string) (Identity, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	claims, err := s.Keys.Verifier.Verify(token)
	if err != nil {
		log.Debug("session rejected", slog.Any("error", err))
		return Identity{}, ErrInvalidSession
	}

	if s.Denylist != nil && claims.ID != "" {
		revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Error("failed to check session denylist", slog.Any("error", err))
			return Identity{}, err
		}
		if revoked {
			log.Debug("revoked session presented", slog.String("user_id", claims.Subject))
			return Identity{}, ErrInvalidSession
		}
	}

	id := Identity{
		UserID:          claims.Subject,
		ActiveCompanyID: claims.ActiveCompanyID,
		SessionID:       claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// VerifyOptional never fails. A missing or invalid token yields Anonymous.
// Infrastructure errors are logged and also yield Anonymous.
func (s *SessionIssuer) VerifyOptional(ctx context.Context, token string) Caller {
	if token == "" {
		return Anonymous()
	}
	id, err := s.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			slogx.FromContext(ctx).Warn("optional session check failed", slog.Any("error", err))
		}
		return Anonymous()
	}
	return Authenticated(id)
}

// Revoke denylists the session until its own expiry.
func (s *SessionIssuer) Revoke(ctx context.Context, id Identity) error {
	if s.Denylist == nil || id.SessionID == "" {
		return nil
	}
	if err := s.Denylist.Revoke(ctx, id.SessionID, id.ExpiresAt); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke session", slog.Any("error", err))
		return err
	}
	return nil
}
