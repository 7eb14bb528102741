package domain

import "time"

// Membership binds a user to a company with a role. There is at most one
// per (UserID, CompanyID).
type Membership struct {
	ID        string
	UserID    string
	CompanyID string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberWithUser is a roster entry of a company.
type MemberWithUser struct {
	Membership
	Email string
	Name  string
}

// MembershipWithCompany is one of a user's companies.
type MembershipWithCompany struct {
	Membership
	Company Company
}
