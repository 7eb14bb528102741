package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// dummyHash is verified against when the email is unknown so both failure
// paths cost one argon2 run.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("tenancy-unknown-user")
	return h
})

// MembershipSummary is one line of the "me" view.
type MembershipSummary struct {
	CompanyID   string
	CompanyName string
	Role        domain.Role
	JoinedAt    time.Time
}

// Me is the authenticated user with their memberships.
type Me struct {
	User        domain.User
	Memberships []MembershipSummary
}

type AuthService struct {
	Store    store.Store
	Sessions *SessionIssuer
	MFA      *MFAService

	Now func() time.Time
}

// Signup creates an account and signs the user in.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (domain.User, Session, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	v := &ValidationError{}
	checkEmail(v, "email", email)
	checkPassword(v, "password", password)
	checkName(v, "name", name)
	if err := v.err(); err != nil {
		return domain.User{}, Session{}, err
	}

	// 2. Hash and insert; the unique index settles races on email
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	now := nowOr(s.Now)
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("signup with registered email")
			return domain.User{}, Session{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	// 3. Sign in
	session, err := s.Sessions.Issue(ctx, user.ID, "")
	if err != nil {
		return domain.User{}, Session{}, err
	}

	log.Info("user signed up", slog.String("user_id", user.ID))
	return user, session, nil
}

// Login checks credentials and, when enrolled, a TOTP code.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode string) (domain.User, Session, error) {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, Session{}, ErrInvalidCredentials
	}

	// 1. Resolve the user
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash())
			log.Warn("login for unknown email")
			return domain.User{}, Session{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, Session{}, err
	}

	// 2. Check the password
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login with wrong password", slog.String("user_id", user.ID))
		return domain.User{}, Session{}, ErrInvalidCredentials
	}

	// 3. Second factor
	if user.MFAEnabled() {
		if totpCode == "" {
			return domain.User{}, Session{}, ErrMFARequired
		}
		if err := s.MFA.verifyCode(ctx, user, totpCode); err != nil {
			log.Warn("login with wrong mfa code", slog.String("user_id", user.ID))
			return domain.User{}, Session{}, err
		}
	}

	// 4. Sign in with the stored active company
	var activeCompanyID string
	if user.ActiveCompanyID != nil {
		activeCompanyID = *user.ActiveCompanyID
	}
	session, err := s.Sessions.Issue(ctx, user.ID, activeCompanyID)
	if err != nil {
		return domain.User{}, Session{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, session, nil
}

// Logout revokes the presented session.
func (s *AuthService) Logout(ctx context.Context, caller Caller) error {
	id, ok := caller.Identity()
	if !ok {
		return nil
	}
	if err := s.Sessions.Revoke(ctx, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", id.UserID))
	return nil
}

// Me returns the user and every membership they hold.
func (s *AuthService) Me(ctx context.Context, userID string) (Me, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Me{}, ErrInvalidSession
		}
		return Me{}, err
	}

	items, err := s.Store.Memberships().ListForUser(ctx, userID, MaxPageLimit, 0)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list memberships", slog.Any("error", err))
		return Me{}, err
	}

	me := Me{User: user, Memberships: make([]MembershipSummary, 0, len(items))}
	for _, m := range items {
		me.Memberships = append(me.Memberships, MembershipSummary{
			CompanyID:   m.CompanyID,
			CompanyName: m.Company.Name,
			Role:        m.Role,
			JoinedAt:    m.CreatedAt,
		})
	}
	return me, nil
}
