package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// MFAEnrollment is shown once to the user to set up an authenticator.
type MFAEnrollment struct {
	Secret string
	URL    string
}

// MFAService manages the optional TOTP second factor. Secrets are sealed
// with Secrets before they are stored.
type MFAService struct {
	Store   store.Store
	Secrets *cryptox.SecretBox
	Issuer  string // shown in authenticator apps

	Now func() time.Time
}

// Enroll generates a new secret. MFA is not enforced until Confirm.
func (s *MFAService) Enroll(ctx context.Context, userID string) (MFAEnrollment, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return MFAEnrollment{}, ErrUserNotFound
		}
		return MFAEnrollment{}, err
	}
	if user.MFAEnabled() {
		return MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	sealed, err := s.Secrets.Seal(key.Secret())
	if err != nil {
		return MFAEnrollment{}, fmt.Errorf("failed to seal TOTP secret: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, sealed); err != nil {
		log.Error("failed to store mfa secret", slog.Any("error", err))
		return MFAEnrollment{}, err
	}

	log.Info("mfa enrollment started", slog.String("user_id", userID))
	return MFAEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Confirm enables MFA once the user proves they hold the secret.
func (s *MFAService) Confirm(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil {
		return ErrMFANotEnrolled
	}

	if err := s.verifyCode(ctx, user, code); err != nil {
		return err
	}

	if err := s.Store.Users().EnableMFA(ctx, userID); err != nil {
		log.Error("failed to enable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa enabled", slog.String("user_id", userID))
	return nil
}

// Disable turns MFA off, which requires a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.MFAEnabled() {
		return ErrMFANotEnabled
	}

	if err := s.verifyCode(ctx, user, code); err != nil {
		return err
	}

	if err := s.Store.Users().DisableMFA(ctx, userID); err != nil {
		log.Error("failed to disable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa disabled", slog.String("user_id", userID))
	return nil
}

// verifyCode checks code against the user's sealed secret.
func (s *MFAService) verifyCode(ctx context.Context, user domain.User, code string) error {
	if user.MFASecret == nil {
		return ErrMFANotEnrolled
	}

	secret, err := s.Secrets.Open(*user.MFASecret)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to open mfa secret",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return err
	}

	ok, err := totp.ValidateCustom(code, secret, nowOr(s.Now), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return ErrInvalidTOTPCode
	}
	return nil
}
