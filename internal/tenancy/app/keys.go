package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// InitSessionKeys loads the session signing key.
//
// With TENANCY_SIGNING_KEY_FILE set the key is read from disk and sessions
// survive restarts. Otherwise a key is generated in memory and every
// session issued before a restart becomes invalid.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.SigningKeyFile != "" {
		km, err := jwtx.NewKeyManagerFromFile(cfg.Issuer, cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		logger.Info("loaded session signing key",
			"kid", km.Signer.KID(),
			"issuer", cfg.Issuer,
		)
		return km, nil
	}

	km, err := jwtx.NewEphemeralKeyManager(cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	logger.Info("generated ephemeral session signing key",
		"kid", km.Signer.KID(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing sessions are now invalid due to key generation on startup")

	return km, nil
}

// InitSecretBox builds the cipher that seals MFA secrets at rest.
func InitSecretBox(cfg Config, logger *slog.Logger) (*cryptox.SecretBox, error) {
	material, ephemeral, err := cryptox.LoadMasterKey(cfg.MasterKeyPath)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		logger.Warn("no master key configured, enrolled MFA secrets will not survive a restart")
	}

	box, err := cryptox.NewSecretBox(material)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret box: %w", err)
	}
	return box, nil
}
