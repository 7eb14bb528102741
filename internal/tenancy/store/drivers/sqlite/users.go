package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		PasswordHash:    u.PasswordHash,
		ActiveCompanyID: mapOptionalString(u.ActiveCompanyID),
		CreatedAt:       utc(u.CreatedAt),
		UpdatedAt:       utc(u.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, email string) error {
	err := r.q.UpdateUserProfile(ctx, gen.UpdateUserProfileParams{
		Name:      name,
		Email:     email,
		UpdatedAt: utc(r.now()),
		ID:        userID,
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash: newHash,
		UpdatedAt:    utc(r.now()),
		ID:           userID,
	})
}

func (r *usersRepo) SetActiveCompany(ctx context.Context, userID, companyID string) error {
	return r.q.SetUserActiveCompany(ctx, gen.SetUserActiveCompanyParams{
		ActiveCompanyID: mapStringNull(companyID),
		UpdatedAt:       utc(r.now()),
		ID:              userID,
	})
}

func (r *usersRepo) SetActiveCompanyIfUnset(ctx context.Context, userID, companyID string) (bool, error) {
	n, err := r.q.SetUserActiveCompanyIfUnset(ctx, gen.SetUserActiveCompanyIfUnsetParams{
		ActiveCompanyID: mapStringNull(companyID),
		UpdatedAt:       utc(r.now()),
		ID:              userID,
	})
	return n > 0, err
}

func (r *usersRepo) ClearActiveCompanyIf(ctx context.Context, userID, companyID string) (bool, error) {
	n, err := r.q.ClearUserActiveCompanyIf(ctx, gen.ClearUserActiveCompanyIfParams{
		UpdatedAt:       utc(r.now()),
		ID:              userID,
		ActiveCompanyID: mapStringNull(companyID),
	})
	return n > 0, err
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID string, sealedSecret string) error {
	return r.q.UpdateUserMFASecret(ctx, gen.UpdateUserMFASecretParams{
		MfaSecret: mapStringNull(sealedSecret),
		UpdatedAt: utc(r.now()),
		ID:        userID,
	})
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	now := utc(r.now())
	return r.q.EnableUserMFA(ctx, gen.EnableUserMFAParams{
		MfaEnabledAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:    now,
		ID:           userID,
	})
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return r.q.DisableUserMFA(ctx, gen.DisableUserMFAParams{
		UpdatedAt: utc(r.now()),
		ID:        userID,
	})
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
