package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/policy"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// CompanyWithRole is a company seen through one member's eyes.
type CompanyWithRole struct {
	Company domain.Company
	Role    domain.Role
}

// CompanyDetail is a company with its roster.
type CompanyDetail struct {
	Company domain.Company
	Role    domain.Role
	Members []domain.MemberWithUser
}

// UpdateCompany always carries the name. A nil Logo is left alone and an
// empty Logo clears it.
type UpdateCompany struct {
	Name string
	Logo *string
}

type CompanyService struct {
	Store store.Store
	Now   func() time.Time
}

// Create makes actorID the OWNER of a new company and points their active
// company at it. All three writes commit together.
func (s *CompanyService) Create(ctx context.Context, name string, logo *string, actorID string) (CompanyWithRole, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	name = strings.TrimSpace(name)
	logo = normalizeLogo(logo)

	v := &ValidationError{}
	checkName(v, "name", name)
	if logo != nil && !validLogoURL(*logo) {
		v.add("logo", "must be an http or https URL")
	}
	if err := v.err(); err != nil {
		return CompanyWithRole{}, err
	}

	now := nowOr(s.Now)
	company := domain.Company{
		ID:        idx.New().String(),
		Name:      name,
		Logo:      logo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 2. Company, owner membership and pointer in one transaction
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, actorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			log.Error("failed to create company", slog.Any("error", err))
			return err
		}

		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:        idx.New().String(),
			UserID:    actorID,
			CompanyID: company.ID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			log.Error("failed to create owner membership", slog.Any("error", err))
			return err
		}

		if err := tx.Users().SetActiveCompany(ctx, actorID, company.ID); err != nil {
			log.Error("failed to set active company", slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return CompanyWithRole{}, err
	}

	log.Info("company created",
		slog.String("company_id", company.ID),
		slog.String("owner_id", actorID),
	)
	return CompanyWithRole{Company: company, Role: domain.RoleOwner}, nil
}

// Get returns the company and its roster to a member.
func (s *CompanyService) Get(ctx context.Context, companyID, actorID string) (CompanyDetail, error) {
	log := slogx.FromContext(ctx)

	m, err := requireMembership(ctx, s.Store, actorID, companyID)
	if err != nil {
		return CompanyDetail{}, err
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Error("membership references missing company", slog.String("company_id", companyID))
			return CompanyDetail{}, ErrCompanyNotFound
		}
		log.Error("failed to fetch company", slog.Any("error", err))
		return CompanyDetail{}, err
	}

	members, err := s.Store.Memberships().ListForCompany(ctx, companyID)
	if err != nil {
		log.Error("failed to list members", slog.Any("error", err))
		return CompanyDetail{}, err
	}

	return CompanyDetail{Company: company, Role: m.Role, Members: members}, nil
}

// Update renames the company and optionally changes its logo. OWNER or ADMIN only.
func (s *CompanyService) Update(ctx context.Context, companyID string, upd UpdateCompany, actorID string) (domain.Company, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate, name is always required
	v := &ValidationError{}
	upd.Name = strings.TrimSpace(upd.Name)
	if upd.Name == "" {
		v.add("name", "is required")
	} else {
		checkName(v, "name", upd.Name)
	}
	if upd.Logo != nil {
		logo := strings.TrimSpace(*upd.Logo)
		upd.Logo = &logo
		if logo != "" && !validLogoURL(logo) {
			v.add("logo", "must be an http or https URL")
		}
	}
	if err := v.err(); err != nil {
		return domain.Company{}, err
	}

	var company domain.Company
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Authorize
		m, err := requireMembership(ctx, tx, actorID, companyID)
		if err != nil {
			return err
		}
		if !policy.CanUpdateCompany(m.Role) {
			log.Warn("company update denied",
				slog.String("actor_role", m.Role.String()),
				slog.String("company_id", companyID),
			)
			return ErrInsufficientRole
		}

		// 3. Merge and persist
		company, err = tx.Companies().GetCompanyByID(ctx, companyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCompanyNotFound
			}
			return err
		}

		company.Name = upd.Name
		if upd.Logo != nil {
			company.Logo = normalizeLogo(upd.Logo)
		}
		company.UpdatedAt = nowOr(s.Now)

		if err := tx.Companies().UpdateCompany(ctx, company); err != nil {
			log.Error("failed to update company", slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Company{}, err
	}

	log.Info("company updated", slog.String("company_id", companyID))
	return company, nil
}

// Select points the actor's active company at companyID. Non-members get
// ErrCompanyNotAccessible so existence is not confirmed.
func (s *CompanyService) Select(ctx context.Context, companyID, actorID string) (CompanyWithRole, error) {
	log := slogx.FromContext(ctx)

	m, err := s.Store.Memberships().GetMembership(ctx, actorID, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("select of inaccessible company",
				slog.String("user_id", actorID),
				slog.String("company_id", companyID),
			)
			return CompanyWithRole{}, ErrCompanyNotAccessible
		}
		log.Error("failed to fetch membership", slog.Any("error", err))
		return CompanyWithRole{}, err
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CompanyWithRole{}, ErrCompanyNotAccessible
		}
		return CompanyWithRole{}, err
	}

	if err := s.Store.Users().SetActiveCompany(ctx, actorID, companyID); err != nil {
		log.Error("failed to set active company", slog.Any("error", err))
		return CompanyWithRole{}, err
	}

	log.Debug("active company selected",
		slog.String("user_id", actorID),
		slog.String("company_id", companyID),
	)
	return CompanyWithRole{Company: company, Role: m.Role}, nil
}

// normalizeLogo trims and maps the empty string to nil.
func normalizeLogo(logo *string) *string {
	if logo == nil {
		return nil
	}
	l := strings.TrimSpace(*logo)
	if l == "" {
		return nil
	}
	return &l
}
