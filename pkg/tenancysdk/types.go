package tenancysdk

import (
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g., "forbidden", "conflict")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Details lists per-field problems for validation_error responses
	Details []FieldError `json:"details,omitempty"`
}

// FieldError is one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ============================================================================
// Account Types
// ============================================================================

// SignupRequest creates an account.
type SignupRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret1"`
	Name     string `json:"name" example:"Alice"`
}

// LoginRequest signs in. TOTP is only needed once MFA is enabled.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret1"`
	TOTP     string `json:"totp,omitempty" example:"123456"`
}

// User is the public view of an account.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ActiveCompanyID *string   `json:"activeCompanyId"`
	MFAEnabled      bool      `json:"mfaEnabled"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AuthResponse is returned by signup and login. The session itself travels
// in the "token" cookie.
type AuthResponse struct {
	User User `json:"user"`
}

// MembershipSummary is one company the user belongs to.
type MembershipSummary struct {
	CompanyID   string    `json:"companyId"`
	CompanyName string    `json:"companyName"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// MeResponse is the authenticated user with every membership.
type MeResponse struct {
	User        User                `json:"user"`
	Memberships []MembershipSummary `json:"memberships"`
}

// UpdateProfileRequest is a partial update; omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ChangePasswordRequest replaces the password after re-checking the current one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================================================
// Company Types
// ============================================================================

// CreateCompanyRequest creates a company owned by the caller.
type CreateCompanyRequest struct {
	Name string  `json:"name" example:"Acme"`
	Logo *string `json:"logo,omitempty" example:"https://acme.example.com/logo.png"`
}

// UpdateCompanyRequest requires a name. A missing logo is left alone and an
// empty logo clears it.
type UpdateCompanyRequest struct {
	Name string  `json:"name"`
	Logo *string `json:"logo,omitempty"`
}

// Company is a company as seen by one member.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Logo        *string   `json:"logo"`
	Role        string    `json:"role,omitempty"`
	JoinedAt    time.Time `json:"joinedAt,omitzero"`
	MemberCount int       `json:"memberCount,omitempty"`
	Members     []Member  `json:"members,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is one row of a company roster. ID is the member's user id.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// CompanyResponse wraps a single company.
type CompanyResponse struct {
	Company Company `json:"company"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// CompaniesResponse is a page of the caller's companies.
type CompaniesResponse struct {
	Data []Company `json:"data"`
	Meta PageMeta  `json:"meta"`
}

// UpdateMemberRequest changes a member's role.
type UpdateMemberRequest struct {
	Role string `json:"role" example:"ADMIN"`
}

// MemberResponse wraps a single roster row.
type MemberResponse struct {
	Member Member `json:"member"`
}

// ============================================================================
// Invite Types
// ============================================================================

// CreateInviteRequest invites an email address into a company.
type CreateInviteRequest struct {
	Email string `json:"email" example:"bob@example.com"`
	Role  string `json:"role" example:"MEMBER"`
}

// Invite is an invite as seen by company members. Token is only set on the
// create response.
type Invite struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// InviteResponse wraps a single invite.
type InviteResponse struct {
	Invite Invite `json:"invite"`
}

// InvitesResponse lists pending invites.
type InvitesResponse struct {
	Invites []Invite `json:"invites"`
	Count   int      `json:"count"`
}

// ValidateInviteResponse describes a pending invite to its recipient.
type ValidateInviteResponse struct {
	Valid       bool      `json:"valid"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyName string    `json:"companyName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AcceptInviteRequest accepts an invite. Email, password and name are only
// read when the caller has no session.
type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
}

// AcceptInviteResponse is the joined company and the role granted.
type AcceptInviteResponse struct {
	User    User    `json:"user"`
	Company Company `json:"company"`
	Role    string  `json:"role"`
}

// ============================================================================
// MFA Types
// ============================================================================

// MFAEnrollResponse is shown once to set up an authenticator app.
type MFAEnrollResponse struct {
	Secret string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	URL    string `json:"url" example:"otpauth://totp/Tenancy:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Tenancy"`
}

// MFACodeRequest carries a current TOTP code.
type MFACodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`

	// Denylist indicates the session denylist status
	Denylist string `json:"denylist"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse contains the public keys that verify session tokens.
type JWKSResponse jwtx.JWKS
