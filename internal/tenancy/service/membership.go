package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/policy"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

type MembershipService struct {
	Store store.Store
}

// GetMembership returns store.ErrNotFound when userID is not in companyID.
func (s *MembershipService) GetMembership(ctx context.Context, userID, companyID string) (domain.Membership, error) {
	return s.Store.Memberships().GetMembership(ctx, userID, companyID)
}

// RequireMembership is the tenant gate. Absence is ErrNotMember.
func (s *MembershipService) RequireMembership(ctx context.Context, userID, companyID string) (domain.Membership, error) {
	return requireMembership(ctx, s.Store, userID, companyID)
}

func requireMembership(ctx context.Context, st store.Store, userID, companyID string) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	m, err := st.Memberships().GetMembership(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("non-member attempted company action",
				slog.String("user_id", userID),
				slog.String("company_id", companyID),
			)
			return domain.Membership{}, ErrNotMember
		}
		log.Error("failed to fetch membership", slog.Any("error", err))
		return domain.Membership{}, err
	}
	return m, nil
}

// ListForUser pages the user's companies, newest membership first.
func (s *MembershipService) ListForUser(ctx context.Context, userID string, page, limit int) (Page[domain.MembershipWithCompany], error) {
	log := slogx.FromContext(ctx)

	page, limit = normalizePage(page, limit)

	items, err := s.Store.Memberships().ListForUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list memberships", slog.Any("error", err))
		return Page[domain.MembershipWithCompany]{}, err
	}

	total, err := s.Store.Memberships().CountForUser(ctx, userID)
	if err != nil {
		log.Error("failed to count memberships", slog.Any("error", err))
		return Page[domain.MembershipWithCompany]{}, err
	}

	return Page[domain.MembershipWithCompany]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return page, min(limit, MaxPageLimit)
}

// ListForCompany returns the roster. Ordering is by role name, which is
// alphabetical (ADMIN, MEMBER, OWNER), then by join time.
func (s *MembershipService) ListForCompany(ctx context.Context, companyID string) ([]domain.MemberWithUser, error) {
	return s.Store.Memberships().ListForCompany(ctx, companyID)
}

// UpdateRole changes targetUserID's role in companyID.
func (s *MembershipService) UpdateRole(
	ctx context.Context,
	companyID string,
	targetUserID string,
	newRole domain.Role,
	actorID string,
) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the requested role
	if !newRole.Valid() {
		v := &ValidationError{}
		v.add("role", "must be one of OWNER, ADMIN, MEMBER")
		return domain.Membership{}, v
	}

	var updated domain.Membership
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Resolve the actor
		actor, err := requireMembership(ctx, tx, actorID, companyID)
		if err != nil {
			return err
		}

		// 3. Resolve the target
		target, err := tx.Memberships().GetMembership(ctx, targetUserID, companyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			log.Error("failed to fetch target membership", slog.Any("error", err))
			return err
		}

		// 4. Apply the role matrix
		if !policy.CanUpdateMemberRole(actor.Role, target.Role) {
			log.Warn("role update denied",
				slog.String("actor_role", actor.Role.String()),
				slog.String("target_role", target.Role.String()),
				slog.String("company_id", companyID),
			)
			return ErrCannotManageMember
		}

		// An ADMIN may not promote anyone to OWNER.
		if newRole == domain.RoleOwner && actor.Role != domain.RoleOwner {
			log.Warn("owner promotion denied",
				slog.String("actor_role", actor.Role.String()),
				slog.String("company_id", companyID),
			)
			return ErrRoleGrantNotAllowed
		}

		// 5. The company keeps at least one OWNER
		if target.Role == domain.RoleOwner && newRole != domain.RoleOwner {
			owners, err := tx.Memberships().CountByRole(ctx, companyID, domain.RoleOwner)
			if err != nil {
				log.Error("failed to count owners", slog.Any("error", err))
				return err
			}
			if owners <= 1 {
				log.Warn("last owner demotion rejected",
					slog.String("company_id", companyID),
					slog.String("target_user_id", targetUserID),
				)
				return ErrLastOwnerDemotion
			}
		}

		// 6. Apply
		if err := tx.Memberships().UpdateRole(ctx, target.ID, newRole); err != nil {
			log.Error("failed to update role", slog.Any("error", err))
			return err
		}

		updated = target
		updated.Role = newRole
		return nil
	})
	if err != nil {
		return domain.Membership{}, err
	}

	log.Info("member role updated",
		slog.String("company_id", companyID),
		slog.String("target_user_id", targetUserID),
		slog.String("role", newRole.String()),
	)
	return updated, nil
}

// RemoveMember deletes targetUserID's membership and clears their active
// company pointer when it referenced companyID.
func (s *MembershipService) RemoveMember(ctx context.Context, companyID, targetUserID, actorID string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Actor must be a member allowed to manage members
		actor, err := requireMembership(ctx, tx, actorID, companyID)
		if err != nil {
			return err
		}
		if !policy.CanManageMembers(actor.Role) {
			log.Warn("member removal denied",
				slog.String("actor_role", actor.Role.String()),
				slog.String("company_id", companyID),
			)
			return ErrInsufficientRole
		}

		// 2. Target must be a member of this company
		target, err := tx.Memberships().GetMembership(ctx, targetUserID, companyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			log.Error("failed to fetch target membership", slog.Any("error", err))
			return err
		}

		// 3. ADMIN cannot touch OWNER or ADMIN
		if !policy.CanRemoveMember(actor.Role, target.Role) {
			log.Warn("member removal denied",
				slog.String("actor_role", actor.Role.String()),
				slog.String("target_role", target.Role.String()),
				slog.String("company_id", companyID),
			)
			return ErrCannotManageMember
		}

		// 4. The sole OWNER cannot remove themselves
		if actorID == targetUserID && target.Role == domain.RoleOwner {
			owners, err := tx.Memberships().CountByRole(ctx, companyID, domain.RoleOwner)
			if err != nil {
				log.Error("failed to count owners", slog.Any("error", err))
				return err
			}
			if owners <= 1 {
				log.Warn("sole owner self-removal rejected", slog.String("company_id", companyID))
				return ErrSoleOwner
			}
		}

		// 5. Delete the membership
		if err := tx.Memberships().DeleteMembership(ctx, target.ID); err != nil {
			log.Error("failed to delete membership", slog.Any("error", err))
			return err
		}

		// 6. Clear the pointer only if it referenced this company
		if _, err := tx.Users().ClearActiveCompanyIf(ctx, targetUserID, companyID); err != nil {
			log.Error("failed to clear active company", slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("member removed",
		slog.String("company_id", companyID),
		slog.String("target_user_id", targetUserID),
		slog.String("actor_id", actorID),
	)
	return nil
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
