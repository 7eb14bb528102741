package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/policy"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// CreatedInvite is returned once to the inviter. Token is never stored.
type CreatedInvite struct {
	Invite domain.Invite
	Token  string
}

// InviteValidation is the public view of a pending invite.
type InviteValidation struct {
	Valid       bool
	ExpiresAt   time.Time
	Email       string
	Role        domain.Role
	CompanyName string
}

// NewAccount holds the sign-up fields for anonymous acceptance.
type NewAccount struct {
	Email    string
	Password string
	Name     string
}

// AcceptResult is the outcome of accepting an invite.
type AcceptResult struct {
	User    domain.User
	Company domain.Company
	Role    domain.Role
	Session Session
}

type InviteService struct {
	Store    store.Store
	Sessions *SessionIssuer
	Notifier Notifier

	// FrontendURL prefixes the accept link in invite emails.
	FrontendURL string

	Now func() time.Time
}

// Create issues an invite for email to join companyID with role.
func (s *InviteService) Create(
	ctx context.Context,
	companyID string,
	email string,
	role domain.Role,
	actorID string,
) (CreatedInvite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	email = normalizeEmail(email)
	v := &ValidationError{}
	checkEmail(v, "email", email)
	if !role.Valid() {
		v.add("role", "must be one of OWNER, ADMIN, MEMBER")
	}
	if err := v.err(); err != nil {
		return CreatedInvite{}, err
	}

	// 2. Authorize against the role ceiling
	actor, err := requireMembership(ctx, s.Store, actorID, companyID)
	if err != nil {
		return CreatedInvite{}, err
	}
	if !policy.CanInvite(actor.Role, role) {
		log.Warn("invite denied",
			slog.String("actor_role", actor.Role.String()),
			slog.String("granted_role", role.String()),
			slog.String("company_id", companyID),
		)
		if actor.Role == domain.RoleMember {
			return CreatedInvite{}, ErrInsufficientRole
		}
		return CreatedInvite{}, ErrRoleGrantNotAllowed
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CreatedInvite{}, ErrCompanyNotFound
		}
		return CreatedInvite{}, err
	}

	now := nowOr(s.Now)

	// 3. Conflict checks, membership first
	member, err := s.Store.Memberships().ExistsForEmail(ctx, companyID, email)
	if err != nil {
		log.Error("failed to check membership by email", slog.Any("error", err))
		return CreatedInvite{}, err
	}
	if member {
		return CreatedInvite{}, ErrAlreadyMember
	}

	pending, err := s.Store.Invites().HasPending(ctx, companyID, email, now)
	if err != nil {
		log.Error("failed to check pending invites", slog.Any("error", err))
		return CreatedInvite{}, err
	}
	if pending {
		return CreatedInvite{}, ErrInvitePending
	}

	// 4. Generate the token, keep only its fingerprint
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return CreatedInvite{}, err
	}

	invite := domain.Invite{
		ID:        idx.New().String(),
		CompanyID: companyID,
		Email:     email,
		Role:      role,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(domain.InviteTTL),
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Invites().CreateInvite(ctx, invite); err != nil {
		log.Error("failed to create invite", slog.Any("error", err))
		return CreatedInvite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", invite.ID),
		slog.String("company_id", companyID),
		slog.String("role", role.String()),
		slog.Time("expires_at", invite.ExpiresAt),
	)

	// 5. Notify after persisting. Failure does not undo the invite.
	s.notify(ctx, company, invite, token)

	return CreatedInvite{Invite: invite, Token: token}, nil
}

func (s *InviteService) notify(ctx context.Context, company domain.Company, invite domain.Invite, token string) {
	if s.Notifier == nil {
		return
	}

	link := strings.TrimRight(s.FrontendURL, "/") + "/accept-invite?token=" + url.QueryEscape(token)
	subject := fmt.Sprintf("You're invited to join %s", company.Name)
	body := fmt.Sprintf(
		"You have been invited to join %s as %s.\n\nAccept the invite: %s\n\nThis link expires on %s.\n",
		company.Name,
		invite.Role,
		link,
		invite.ExpiresAt.UTC().Format(time.RFC1123),
	)

	if err := s.Notifier.Notify(ctx, invite.Email, subject, body); err != nil {
		slogx.FromContext(ctx).Warn("invite notification failed",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
	}
}

// lookupPending resolves a raw token and checks the invite is still pending.
func lookupPending(ctx context.Context, st store.Store, token string, now time.Time) (domain.Invite, error) {
	if token == "" {
		return domain.Invite{}, ErrInviteNotFound
	}

	invite, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInviteNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch invite", slog.Any("error", err))
		return domain.Invite{}, err
	}

	switch invite.Status(now) {
	case domain.InviteStatusAccepted:
		return domain.Invite{}, ErrInviteAlreadyAccepted
	case domain.InviteStatusExpired:
		return domain.Invite{}, ErrInviteExpired
	}
	return invite, nil
}

// Validate checks a token without consuming it.
func (s *InviteService) Validate(ctx context.Context, token string) (InviteValidation, error) {
	invite, err := lookupPending(ctx, s.Store, token, nowOr(s.Now))
	if err != nil {
		return InviteValidation{}, err
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, invite.CompanyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InviteValidation{}, ErrInviteNotFound
		}
		return InviteValidation{}, err
	}

	return InviteValidation{
		Valid:       true,
		ExpiresAt:   invite.ExpiresAt,
		Email:       invite.Email,
		Role:        invite.Role,
		CompanyName: company.Name,
	}, nil
}

// Accept turns a pending invite into a membership. An authenticated caller
// joins as themselves, an anonymous caller must supply account fields for
// the invited email. The user, membership and invite writes commit together
// and a fresh session is issued afterwards.
func (s *InviteService) Accept(ctx context.Context, token string, caller Caller, fields *NewAccount) (AcceptResult, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	// 1. Resolve the invite
	invite, err := lookupPending(ctx, s.Store, token, now)
	if err != nil {
		log.Warn("invite acceptance rejected", slog.Any("reason", err))
		return AcceptResult{}, err
	}

	// 2. Resolve who is accepting
	var (
		user    domain.User
		newUser bool
	)
	if id, ok := caller.Identity(); ok {
		user, err = s.Store.Users().GetUserByID(ctx, id.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return AcceptResult{}, ErrUserNotFound
			}
			return AcceptResult{}, err
		}
		if user.Email != invite.Email {
			log.Warn("invite accepted by wrong account",
				slog.String("invite_id", invite.ID),
				slog.String("user_id", user.ID),
			)
			return AcceptResult{}, ErrInviteNotAddressed
		}
	} else {
		user, err = s.prepareAccount(ctx, invite, fields, now)
		if err != nil {
			return AcceptResult{}, err
		}
		newUser = true
	}

	var company domain.Company
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 3. Re-check state inside the transaction
		current, err := tx.Invites().GetInviteByID(ctx, invite.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		switch current.Status(now) {
		case domain.InviteStatusAccepted:
			return ErrInviteAlreadyAccepted
		case domain.InviteStatusExpired:
			return ErrInviteExpired
		}

		company, err = tx.Companies().GetCompanyByID(ctx, invite.CompanyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		// 4. Create the account on the anonymous path
		if newUser {
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrEmailTaken
				}
				log.Error("failed to create user", slog.Any("error", err))
				return err
			}
		}

		// 5. Membership, at most one per user and company
		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:        idx.New().String(),
			UserID:    user.ID,
			CompanyID: invite.CompanyID,
			Role:      invite.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyMember
			}
			log.Error("failed to create membership", slog.Any("error", err))
			return err
		}

		// 6. Flip accepted exactly once
		flipped, err := tx.Invites().MarkAccepted(ctx, invite.ID, user.ID)
		if err != nil {
			log.Error("failed to mark invite accepted", slog.Any("error", err))
			return err
		}
		if !flipped {
			return ErrInviteAlreadyAccepted
		}

		// 7. Default the active company
		if _, err := tx.Users().SetActiveCompanyIfUnset(ctx, user.ID, invite.CompanyID); err != nil {
			log.Error("failed to set active company", slog.Any("error", err))
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, user.ID)
		return err
	})
	if err != nil {
		return AcceptResult{}, err
	}

	// 8. Issue a fresh session for the accepting user
	var activeCompanyID string
	if user.ActiveCompanyID != nil {
		activeCompanyID = *user.ActiveCompanyID
	}
	session, err := s.Sessions.Issue(ctx, user.ID, activeCompanyID)
	if err != nil {
		return AcceptResult{}, err
	}

	log.Info("invite accepted",
		slog.String("invite_id", invite.ID),
		slog.String("company_id", invite.CompanyID),
		slog.String("user_id", user.ID),
		slog.Bool("new_user", newUser),
	)

	return AcceptResult{
		User:    user,
		Company: company,
		Role:    invite.Role,
		Session: session,
	}, nil
}

// prepareAccount validates the anonymous path and builds the user to insert.
func (s *InviteService) prepareAccount(ctx context.Context, invite domain.Invite, fields *NewAccount, now time.Time) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if fields == nil {
		fields = &NewAccount{}
	}
	email := normalizeEmail(fields.Email)
	name := strings.TrimSpace(fields.Name)

	v := &ValidationError{}
	if email == "" {
		v.add("email", "is required")
	}
	if fields.Password == "" {
		v.add("password", "is required")
	} else {
		checkPassword(v, "password", fields.Password)
	}
	if name == "" {
		v.add("name", "is required")
	} else {
		checkName(v, "name", name)
	}
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

	if email != invite.Email {
		log.Warn("anonymous accept for a different email", slog.String("invite_id", invite.ID))
		return domain.User{}, ErrInviteNotAddressed
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to look up user by email", slog.Any("error", err))
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(fields.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	companyID := invite.CompanyID
	return domain.User{
		ID:              idx.New().String(),
		Email:           email,
		Name:            name,
		PasswordHash:    hash,
		ActiveCompanyID: &companyID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Cancel deletes an invite of companyID for an OWNER or ADMIN. The invite is
// deleted whatever its state.
func (s *InviteService) Cancel(ctx context.Context, companyID, inviteID, actorID string) error {
	log := slogx.FromContext(ctx)

	actor, err := requireMembership(ctx, s.Store, actorID, companyID)
	if err != nil {
		return err
	}
	if !policy.CanCancelInvite(actor.Role) {
		log.Warn("invite cancel denied",
			slog.String("actor_role", actor.Role.String()),
			slog.String("company_id", companyID),
		)
		return ErrInsufficientRole
	}

	invite, err := s.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if invite.CompanyID != companyID {
		log.Warn("cross-company invite cancel",
			slog.String("invite_id", inviteID),
			slog.String("company_id", companyID),
		)
		return ErrInviteNotFound
	}

	if err := s.Store.Invites().DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		log.Error("failed to delete invite", slog.Any("error", err))
		return err
	}

	log.Info("invite cancelled",
		slog.String("invite_id", inviteID),
		slog.String("company_id", companyID),
	)
	return nil
}

// ListPending returns the unaccepted, unexpired invites of companyID to any
// member, newest first.
func (s *InviteService) ListPending(ctx context.Context, companyID, actorID string) ([]domain.Invite, error) {
	actor, err := requireMembership(ctx, s.Store, actorID, companyID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewInvites(actor.Role) {
		return nil, ErrInsufficientRole
	}

	invites, err := s.Store.Invites().ListPending(ctx, companyID, nowOr(s.Now))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invites", slog.Any("error", err))
		return nil, err
	}
	return invites, nil
}
