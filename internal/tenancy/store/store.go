package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and Tx-scoped stores hand out the same repositories so a service
// can run several of them atomically.
type Store interface {
	Users() Users
	Companies() Companies
	Memberships() Memberships
	Invites() Invites

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Inside fn only
	// the tx argument may be used for data access.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile sets name and email. ErrAlreadyExists when the email
	// belongs to someone else.
	UpdateProfile(ctx context.Context, userID, name, email string) error

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetActiveCompany points the user at companyID unconditionally.
	SetActiveCompany(ctx context.Context, userID, companyID string) error

	// SetActiveCompanyIfUnset points the user at companyID only when no
	// active company is recorded. It reports whether the row changed.
	SetActiveCompanyIfUnset(ctx context.Context, userID, companyID string) (bool, error)

	// ClearActiveCompanyIf nulls the pointer only when it equals companyID.
	// It reports whether the row changed.
	ClearActiveCompanyIf(ctx context.Context, userID, companyID string) (bool, error)

	// UpdateMFASecret stores a sealed, not yet confirmed TOTP secret.
	UpdateMFASecret(ctx context.Context, userID string, sealedSecret string) error

	// EnableMFA stamps mfa_enabled_at.
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears mfa_enabled_at and the secret.
	DisableMFA(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Companies interface {
	CreateCompany(ctx context.Context, c domain.Company) error
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)

	// UpdateCompany overwrites name and logo.
	UpdateCompany(ctx context.Context, c domain.Company) error
}

type Memberships interface {
	// CreateMembership inserts a membership. ErrAlreadyExists when the user
	// already belongs to the company.
	CreateMembership(ctx context.Context, m domain.Membership) error

	GetMembership(ctx context.Context, userID, companyID string) (domain.Membership, error)

	// ListForUser pages a user's companies, newest membership first.
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.MembershipWithCompany, error)
	CountForUser(ctx context.Context, userID string) (int, error)

	// ListForCompany returns the roster ordered by role name then join time.
	ListForCompany(ctx context.Context, companyID string) ([]domain.MemberWithUser, error)

	// CountByRole counts the company's members holding role.
	CountByRole(ctx context.Context, companyID string, role domain.Role) (int, error)

	// ExistsForEmail reports whether a user with email belongs to the company.
	ExistsForEmail(ctx context.Context, companyID, email string) (bool, error)

	UpdateRole(ctx context.Context, membershipID string, role domain.Role) error
	DeleteMembership(ctx context.Context, membershipID string) error
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error
	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// GetInviteByTokenHash returns an invite in any state.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// ListPending returns unaccepted invites with expires_at >= now, newest first.
	ListPending(ctx context.Context, companyID string, now time.Time) ([]domain.Invite, error)

	// HasPending reports whether an unaccepted, unexpired invite exists for
	// email in the company.
	HasPending(ctx context.Context, companyID, email string, now time.Time) (bool, error)

	// MarkAccepted flips accepted from 0 to 1 and records the user. It
	// reports false when the invite was already accepted.
	MarkAccepted(ctx context.Context, inviteID, userID string) (bool, error)

	DeleteInvite(ctx context.Context, inviteID string) error
}

// Denylist records revoked session ids until their tokens would have
// expired anyway. It lives outside the relational store.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
