package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite/gen"
)

type membershipsRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	err := r.q.CreateMembership(ctx, gen.CreateMembershipParams{
		ID:        m.ID,
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      string(m.Role),
		CreatedAt: utc(m.CreatedAt),
		UpdatedAt: utc(m.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, userID, companyID string) (domain.Membership, error) {
	row, err := r.q.GetMembership(ctx, gen.GetMembershipParams{
		UserID:    userID,
		CompanyID: companyID,
	})
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return mapMembership(row), nil
}

func (r *membershipsRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.MembershipWithCompany, error) {
	rows, err := r.q.ListMembershipsForUser(ctx, gen.ListMembershipsForUserParams{
		UserID: userID,
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MembershipWithCompany, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MembershipWithCompany{
			Membership: domain.Membership{
				ID:        row.ID,
				UserID:    row.UserID,
				CompanyID: row.CompanyID,
				Role:      domain.Role(row.Role),
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			Company: domain.Company{
				ID:        row.CompanyID,
				Name:      row.CompanyName,
				Logo:      mapNullStringPtr(row.CompanyLogo),
				CreatedAt: row.CompanyCreatedAt,
				UpdatedAt: row.CompanyUpdatedAt,
			},
		})
	}
	return out, nil
}

func (r *membershipsRepo) CountForUser(ctx context.Context, userID string) (int, error) {
	count, err := r.q.CountMembershipsForUser(ctx, userID)
	return int(count), err
}

func (r *membershipsRepo) ListForCompany(ctx context.Context, companyID string) ([]domain.MemberWithUser, error) {
	rows, err := r.q.ListMembersForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MemberWithUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MemberWithUser{
			Membership: domain.Membership{
				ID:        row.ID,
				UserID:    row.UserID,
				CompanyID: row.CompanyID,
				Role:      domain.Role(row.Role),
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			Email: row.UserEmail,
			Name:  row.UserName,
		})
	}
	return out, nil
}

func (r *membershipsRepo) CountByRole(ctx context.Context, companyID string, role domain.Role) (int, error) {
	count, err := r.q.CountMembersByRole(ctx, gen.CountMembersByRoleParams{
		CompanyID: companyID,
		Role:      string(role),
	})
	return int(count), err
}

func (r *membershipsRepo) ExistsForEmail(ctx context.Context, companyID, email string) (bool, error) {
	count, err := r.q.CountMembersByEmail(ctx, gen.CountMembersByEmailParams{
		CompanyID: companyID,
		Email:     email,
	})
	return count > 0, err
}

func (r *membershipsRepo) UpdateRole(ctx context.Context, membershipID string, role domain.Role) error {
	return mapAffected(r.q.UpdateMembershipRole(ctx, gen.UpdateMembershipRoleParams{
		Role:      string(role),
		UpdatedAt: utc(r.now()),
		ID:        membershipID,
	}))
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, membershipID string) error {
	return mapAffected(r.q.DeleteMembership(ctx, membershipID))
}
