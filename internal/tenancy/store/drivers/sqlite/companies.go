package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite/gen"
)

type companiesRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	err := r.q.CreateCompany(ctx, gen.CreateCompanyParams{
		ID:        c.ID,
		Name:      c.Name,
		Logo:      mapOptionalString(c.Logo),
		CreatedAt: utc(c.CreatedAt),
		UpdatedAt: utc(c.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	row, err := r.q.GetCompanyByID(ctx, id)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	return mapCompany(row), nil
}

func (r *companiesRepo) UpdateCompany(ctx context.Context, c domain.Company) error {
	return mapAffected(r.q.UpdateCompany(ctx, gen.UpdateCompanyParams{
		Name:      c.Name,
		Logo:      mapOptionalString(c.Logo),
		UpdatedAt: utc(r.now()),
		ID:        c.ID,
	}))
}
