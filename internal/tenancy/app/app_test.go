package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tenancy-app-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env to pick up

	for _, key := range []string{
		"TENANCY_ISSUER", "TENANCY_SESSION_TTL", "FRONTEND_URL", "CORS_ORIGIN",
		"SMTP_PORT", "TENANCY_SEED", "PORT", "SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "tenancy", cfg.Issuer)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	require.Equal(t, cfg.FrontendURL, cfg.CORSOrigin)
	require.Equal(t, 587, cfg.SMTPPort)
	require.False(t, cfg.Seed)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("TENANCY_SESSION_TTL", "30")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("CORS_ORIGIN", "")
	t.Setenv("TENANCY_SEED", "true")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, "https://app.example.com", cfg.CORSOrigin)
	require.True(t, cfg.Seed)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TENANCY_ISSUER=from-dotenv\n"), 0o600))

	t.Setenv("TENANCY_ISSUER", "")
	// godotenv does not override variables that are already set, so unset it
	require.NoError(t, os.Unsetenv("TENANCY_ISSUER"))

	cfg := LoadConfig()
	require.Equal(t, "from-dotenv", cfg.Issuer)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	token, err := SeedDemo(ctx, st, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	owner, err := st.Users().GetUserByEmail(ctx, "owner@altaa.ai")
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("123456", owner.PasswordHash))
	require.NotNil(t, owner.ActiveCompanyID)

	roster, err := st.Memberships().ListForCompany(ctx, *owner.ActiveCompanyID)
	require.NoError(t, err)
	roles := map[string]domain.Role{}
	for _, m := range roster {
		roles[m.Email] = m.Role
	}
	require.Equal(t, map[string]domain.Role{
		"owner@altaa.ai":  domain.RoleOwner,
		"admin@altaa.ai":  domain.RoleAdmin,
		"member@altaa.ai": domain.RoleMember,
	}, roles)

	invite, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)
	require.Equal(t, "pending@altaa.ai", invite.Email)
	require.Equal(t, domain.InviteStatusPending, invite.Status(now))

	t.Run("second run is a no-op", func(t *testing.T) {
		again, err := SeedDemo(ctx, st, now)
		require.NoError(t, err)
		require.Empty(t, again)
	})
}

func TestNewServesHealth(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := LoadConfig()
	cfg.DatabaseFile = filepath.Join(dir, "tenancy.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.MasterKeyPath = ""
	cfg.RedisURL = ""
	cfg.SMTPHost = ""
	cfg.Seed = true
	cfg.ShutdownGracePeriod = time.Second

	application, err := New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, application.Shutdown())
}
