package service

import (
	"errors"
	"strings"
)

// Error kinds. Every error a service returns to the transport wraps exactly
// one of these, so callers classify with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation failed")
)

// kindError carries a caller-facing message and unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid email or password")
	ErrInvalidSession     = newError(ErrUnauthenticated, "invalid or expired session")
	ErrMFARequired        = newError(ErrUnauthenticated, "mfa code required")
	ErrInvalidTOTPCode    = newError(ErrUnauthenticated, "invalid mfa code")

	ErrNotMember            = newError(ErrForbidden, "not a member of this company")
	ErrInsufficientRole     = newError(ErrForbidden, "insufficient role for this action")
	ErrRoleGrantNotAllowed  = newError(ErrForbidden, "cannot grant a role above your own")
	ErrInviteNotAddressed   = newError(ErrForbidden, "invite not addressed to you")
	ErrCannotManageMember   = newError(ErrForbidden, "cannot manage a member with this role")
	ErrSoleOwner            = newError(ErrForbidden, "cannot remove the sole owner of a company")
	ErrLastOwnerDemotion    = newError(ErrForbidden, "company must keep at least one owner")
	ErrCompanyNotFound      = newError(ErrNotFound, "company not found")
	ErrCompanyNotAccessible = newError(ErrNotFound, "company not found or not a member")
	ErrMemberNotFound       = newError(ErrNotFound, "member not found")
	ErrInviteNotFound       = newError(ErrNotFound, "invite not found")
	ErrUserNotFound         = newError(ErrNotFound, "user not found")

	ErrEmailTaken        = newError(ErrConflict, "email already registered")
	ErrAlreadyMember     = newError(ErrConflict, "already a member")
	ErrInvitePending     = newError(ErrConflict, "invite pending")
	ErrMFAAlreadyEnabled = newError(ErrConflict, "mfa already enabled")

	ErrInviteAlreadyAccepted = newError(ErrInvalidState, "invite already accepted")
	ErrInviteExpired         = newError(ErrInvalidState, "invite expired")
	ErrMFANotEnrolled        = newError(ErrInvalidState, "mfa not enrolled")
	ErrMFANotEnabled         = newError(ErrInvalidState, "mfa not enabled")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field problems. It unwraps to ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// add records a problem with field.
func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// err returns nil when nothing was recorded.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
