package http

import (
	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

func toUser(u domain.User) tenancysdk.User {
	return tenancysdk.User{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		ActiveCompanyID: u.ActiveCompanyID,
		MFAEnabled:      u.MFAEnabled(),
		CreatedAt:       u.CreatedAt,
	}
}

func toCompany(c domain.Company, role domain.Role) tenancysdk.Company {
	return tenancysdk.Company{
		ID:        c.ID,
		Name:      c.Name,
		Logo:      c.Logo,
		Role:      role.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMember(m domain.MemberWithUser) tenancysdk.Member {
	return tenancysdk.Member{
		ID:       m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role.String(),
		JoinedAt: m.CreatedAt,
	}
}

func toInvite(i domain.Invite, token string) tenancysdk.Invite {
	return tenancysdk.Invite{
		ID:        i.ID,
		Email:     i.Email,
		Role:      i.Role.String(),
		Token:     token,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func toMe(me service.Me) tenancysdk.MeResponse {
	out := tenancysdk.MeResponse{
		User:        toUser(me.User),
		Memberships: make([]tenancysdk.MembershipSummary, 0, len(me.Memberships)),
	}
	for _, m := range me.Memberships {
		out.Memberships = append(out.Memberships, tenancysdk.MembershipSummary{
			CompanyID:   m.CompanyID,
			CompanyName: m.CompanyName,
			Role:        m.Role.String(),
			JoinedAt:    m.JoinedAt,
		})
	}
	return out
}
