package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite/gen"
)

type invitesRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	err := r.q.CreateInvite(ctx, gen.CreateInviteParams{
		ID:        inv.ID,
		CompanyID: inv.CompanyID,
		Email:     inv.Email,
		Role:      string(inv.Role),
		TokenHash: inv.TokenHash,
		ExpiresAt: utc(inv.ExpiresAt),
		CreatedBy: inv.CreatedBy,
		CreatedAt: utc(inv.CreatedAt),
		UpdatedAt: utc(inv.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	row, err := r.q.GetInviteByID(ctx, id)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	row, err := r.q.GetInviteByTokenHash(ctx, hash)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return mapInvite(row), nil
}

func (r *invitesRepo) ListPending(ctx context.Context, companyID string, now time.Time) ([]domain.Invite, error) {
	rows, err := r.q.ListPendingInvites(ctx, gen.ListPendingInvitesParams{
		CompanyID: companyID,
		ExpiresAt: utc(now),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapInvite(row))
	}
	return out, nil
}

func (r *invitesRepo) HasPending(ctx context.Context, companyID, email string, now time.Time) (bool, error) {
	count, err := r.q.CountPendingInvitesForEmail(ctx, gen.CountPendingInvitesForEmailParams{
		CompanyID: companyID,
		Email:     email,
		ExpiresAt: utc(now),
	})
	return count > 0, err
}

func (r *invitesRepo) MarkAccepted(ctx context.Context, inviteID, userID string) (bool, error) {
	n, err := r.q.MarkInviteAccepted(ctx, gen.MarkInviteAcceptedParams{
		UserID:    mapStringNull(userID),
		UpdatedAt: utc(r.now()),
		ID:        inviteID,
	})
	return n > 0, err
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, inviteID string) error {
	return mapAffected(r.q.DeleteInvite(ctx, inviteID))
}
