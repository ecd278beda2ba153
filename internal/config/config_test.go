package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/secrets"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTLDuration())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Redis.Enabled)
}

func TestBuildCatalog(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cat := cfg.BuildCatalog()
	assert.NotEmpty(t, cat.WorkerCategories)
	assert.NotEmpty(t, cat.ProjectStages)

	cfg.Catalog.ProjectStages = []string{"Design", "Build"}
	cat = cfg.BuildCatalog()
	assert.Equal(t, []string{"Design", "Build"}, cat.Stages())
}

func TestApplySecrets(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	provider := secrets.NewProviderWithStore(secrets.SourceVault, secrets.StaticStore{
		"POSTGRES-MAIN-PASSWORD": "vault-pw",
		"jwt-secret":             "vault-jwt",
		"resend-api-key":         "re_123",
	}, zap.NewNop())

	require.NoError(t, config.ApplySecrets(context.Background(), cfg, provider))
	assert.Equal(t, "vault-pw", cfg.Database.Password)
	assert.Equal(t, "vault-jwt", cfg.Auth.JWTSecret)
	assert.Equal(t, "re_123", cfg.Email.ResendAPIKey)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLocation(t *testing.T) {
	app := config.AppConfig{}
	assert.Equal(t, time.UTC, app.Location())

	app.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, app.Location())
}
