package jwtx

import (
	"errors"
	"fmt"
	"os"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
)

// KeyManager wires one signing key to the KeySet and Verifier built from it.
type KeyManager struct {
	Signer   Signer
	KeySet   *KeySet
	Verifier *EdDSAVerifier

	// Ephemeral is true when the key only lives in memory. Every session
	// becomes invalid on restart.
	Ephemeral bool
}

// NewEphemeralKeyManager generates a fresh Ed25519 key on startup.
func NewEphemeralKeyManager(issuer string) (*KeyManager, error) {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}

	km, err := NewKeyManagerFromPEM(issuer, pemKey)
	if err != nil {
		return nil, err
	}
	km.Ephemeral = true
	return km, nil
}

// NewKeyManagerFromFile loads a PKCS8 PEM Ed25519 key from disk.
func NewKeyManagerFromFile(issuer, path string) (*KeyManager, error) {
	pemKey, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read signing key: %w", err)
	}
	return NewKeyManagerFromPEM(issuer, pemKey)
}

// NewKeyManagerFromPEM builds a KeyManager around an existing key. The kid
// is the key's thumbprint.
func NewKeyManagerFromPEM(issuer string, pemKey []byte) (*KeyManager, error) {
	if issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	signer, err := NewSignerEdDSA("", pemKey)
	if err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		KeySet:   keyset,
		Verifier: NewVerifierEdDSA(keyset, issuer),
	}, nil
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.Signer != nil && km.KeySet.IsReady()
}
