package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const (
	seedPassword    = "123456"
	seedCompanyName = "Altaa Demo"
	seedInviteEmail = "pending@altaa.ai"
)

var seedUsers = []struct {
	Email string
	Name  string
	Role  domain.Role
}{
	{"owner@altaa.ai", "Olivia Owner", domain.RoleOwner},
	{"admin@altaa.ai", "Adam Admin", domain.RoleAdmin},
	{"member@altaa.ai", "Mia Member", domain.RoleMember},
}

// SeedDemo fills an empty database with a demo company, one user per role
// and a pending invite. It returns the invite token, or "" when the
// database already had users.
func SeedDemo(ctx context.Context, st store.Store, now time.Time) (string, error) {
	log := slogx.FromContext(ctx)

	empty, err := st.Users().IsEmpty(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing users: %w", err)
	}
	if !empty {
		log.Info("database already has users, skipping seed")
		return "", nil
	}

	hash, err := cryptox.HashPassword(seedPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash seed password: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("failed to generate seed invite token: %w", err)
	}

	company := domain.Company{
		ID:        idx.NewAt(now).String(),
		Name:      seedCompanyName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			return err
		}

		var ownerID string
		for _, su := range seedUsers {
			user := domain.User{
				ID:              idx.NewAt(now).String(),
				Email:           su.Email,
				Name:            su.Name,
				PasswordHash:    hash,
				ActiveCompanyID: &company.ID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return err
			}
			if su.Role == domain.RoleOwner {
				ownerID = user.ID
			}

			if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
				ID:        idx.NewAt(now).String(),
				UserID:    user.ID,
				CompanyID: company.ID,
				Role:      su.Role,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
		}

		return tx.Invites().CreateInvite(ctx, domain.Invite{
			ID:        idx.NewAt(now).String(),
			CompanyID: company.ID,
			Email:     seedInviteEmail,
			Role:      domain.RoleMember,
			TokenHash: cryptox.FingerprintToken(token),
			ExpiresAt: now.Add(domain.InviteTTL),
			CreatedBy: ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to seed demo data: %w", err)
	}

	log.Info("seeded demo data",
		slog.String("company_id", company.ID),
		slog.Int("users", len(seedUsers)),
		slog.String("invite_email", seedInviteEmail),
	)
	return token, nil
}
