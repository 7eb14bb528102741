package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// UpdateProfile is a partial profile update.
type UpdateProfile struct {
	Name  *string
	Email *string
}

type UserService struct {
	Store store.Store
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile changes name and/or email. A taken email is ErrEmailTaken.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd UpdateProfile) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	v := &ValidationError{}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
		checkName(v, "name", user.Name)
	}
	if upd.Email != nil {
		user.Email = normalizeEmail(*upd.Email)
		checkEmail(v, "email", user.Email)
	}
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, user.Name, user.Email); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to update profile", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("profile updated", slog.String("user_id", userID))
	return s.GetProfile(ctx, userID)
}

// ChangePassword re-verifies the current password first.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	log := slogx.FromContext(ctx)

	v := &ValidationError{}
	if currentPassword == "" {
		v.add("currentPassword", "is required")
	}
	checkPassword(v, "newPassword", newPassword)
	if err := v.err(); err != nil {
		return err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		log.Warn("password change with wrong current password", slog.String("user_id", userID))
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}

	log.Info("password changed", slog.String("user_id", userID))
	return nil
}
