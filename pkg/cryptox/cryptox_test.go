package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotContains(t, token, "=")

		other, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, other, "tokens should be unique")
	}

	t.Run("invalid size", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			token, err := GenerateToken(size)
			require.Error(t, err)
			require.Empty(t, token)
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	a := FingerprintToken("invite-token")
	require.Equal(t, a, FingerprintToken("invite-token"), "fingerprint must be deterministic")
	require.NotEqual(t, a, FingerprintToken("invite-token2"))
	require.Len(t, a, 43)
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "secret1"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, VerifyPassword(tt.password, hash))
			require.ErrorIs(t, VerifyPassword(tt.password+"x", hash), ErrPasswordMismatch)
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := map[string]string{
		"too few parts":   "$argon2id$v=19$abc",
		"wrong algorithm": "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"wrong version":   "$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"bad params":      "$argon2id$v=19$nope$c2FsdA$aGFzaA",
		"bad salt":        "$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}

	for name, digest := range tests {
		t.Run(name, func(t *testing.T) {
			err := VerifyPassword("secret1", digest)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestPepperPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := loadOrGeneratePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := loadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGenerateEd25519Key(t *testing.T) {
	pemKey, err := GenerateEd25519Key()
	require.NoError(t, err)
	require.Contains(t, string(pemKey), "BEGIN PRIVATE KEY")
}

func TestSecretBox(t *testing.T) {
	box, err := NewSecretBox([]byte("test-master-key"))
	require.NoError(t, err)

	sealed, err := box.Seal("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	require.NotContains(t, sealed, "JBSWY3DPEHPK3PXP")

	again, err := box.Seal("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must be random")

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", opened)

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewSecretBox([]byte("another-key"))
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := box.Open("AAAA")
		require.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := NewSecretBox(nil)
		require.Error(t, err)
	})
}

func TestLoadMasterKey(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master")
		require.NoError(t, os.WriteFile(path, []byte("from-file"), 0600))

		material, ephemeral, err := LoadMasterKey(path)
		require.NoError(t, err)
		require.False(t, ephemeral)
		require.Equal(t, "from-file", string(material))
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv(MasterKeyEnv, "from-env")

		material, ephemeral, err := LoadMasterKey("")
		require.NoError(t, err)
		require.False(t, ephemeral)
		require.Equal(t, "from-env", string(material))
	})

	t.Run("ephemeral", func(t *testing.T) {
		t.Setenv(MasterKeyEnv, "")

		material, ephemeral, err := LoadMasterKey("")
		require.NoError(t, err)
		require.True(t, ephemeral)
		require.Len(t, material, 32)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadMasterKey(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})
}
