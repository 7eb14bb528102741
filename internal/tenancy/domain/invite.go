package domain

import "time"

// InviteTTL is how long an invite can be accepted after creation.
const InviteTTL = 7 * 24 * time.Hour

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)

type Invite struct {
	ID        string
	CompanyID string
	Email     string
	Role      Role
	TokenHash string // SHA-256 fingerprint of the opaque invite token
	ExpiresAt time.Time
	Accepted  bool
	UserID    *string // set once accepted
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the invite state at now. Acceptance wins over expiry.
func (i Invite) Status(now time.Time) InviteStatus {
	switch {
	case i.Accepted:
		return InviteStatusAccepted
	case i.ExpiresAt.Before(now):
		return InviteStatusExpired
	default:
		return InviteStatusPending
	}
}
