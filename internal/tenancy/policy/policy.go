// Package policy holds the role matrix for company-scoped actions. Every
// function is total over domain.Role and denies unknown roles.
package policy

import "github.com/aussiebroadwan/tenancy/internal/tenancy/domain"

// Rank orders roles by privilege. Unknown roles rank 0.
func Rank(r domain.Role) int {
	switch r {
	case domain.RoleOwner:
		return 3
	case domain.RoleAdmin:
		return 2
	case domain.RoleMember:
		return 1
	}
	return 0
}

// CanInvite reports whether actor may create an invite granting granted.
// OWNER may grant anything, ADMIN may grant up to ADMIN.
func CanInvite(actor, granted domain.Role) bool {
	if !granted.Valid() {
		return false
	}
	switch actor {
	case domain.RoleOwner:
		return true
	case domain.RoleAdmin:
		return granted != domain.RoleOwner
	}
	return false
}

func CanUpdateCompany(actor domain.Role) bool {
	return actor == domain.RoleOwner || actor == domain.RoleAdmin
}

// CanRemoveMember reports whether actor may remove a member holding target.
// OWNER may remove anyone, ADMIN only MEMBERs.
func CanRemoveMember(actor, target domain.Role) bool {
	if !target.Valid() {
		return false
	}
	switch actor {
	case domain.RoleOwner:
		return true
	case domain.RoleAdmin:
		return target == domain.RoleMember
	}
	return false
}

// CanUpdateMemberRole uses the same matrix as CanRemoveMember.
func CanUpdateMemberRole(actor, target domain.Role) bool {
	return CanRemoveMember(actor, target)
}

func CanCancelInvite(actor domain.Role) bool {
	return actor == domain.RoleOwner || actor == domain.RoleAdmin
}

// CanViewInvites is granted to any member.
func CanViewInvites(actor domain.Role) bool {
	return actor.Valid()
}

// CanManageMembers is the precondition for removing anyone at all.
func CanManageMembers(actor domain.Role) bool {
	return actor == domain.RoleOwner || actor == domain.RoleAdmin
}
