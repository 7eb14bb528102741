package domain

import "time"

type User struct {
	ID              string
	Email           string // lower-cased, unique
	Name            string
	PasswordHash    string     // argon2 encoded
	ActiveCompanyID *string    // company the session operates under (nullable)
	MFASecret       *string    // sealed TOTP secret (nullable)
	MFAEnabledAt    *time.Time // when MFA was confirmed (nullable)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MFAEnabled reports whether login requires a TOTP code.
func (u User) MFAEnabled() bool {
	return u.MFAEnabledAt != nil && u.MFASecret != nil
}
