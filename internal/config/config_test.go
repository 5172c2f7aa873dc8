package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("COOKIE_SAMESITE", "")
	t.Setenv("COOKIE_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTAccessTTL)
	assert.Equal(t, "Lax", cfg.Auth.CookieSameSite)
	assert.Equal(t, "/api/v1/admin", cfg.Auth.CookiePath)
	assert.Equal(t, defaultLoginRateLimit, cfg.Auth.LoginRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ProdRejectsDefaultSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/market")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("COOKIE_SECURE", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_SameSiteNoneRequiresSecure(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("COOKIE_SAMESITE", "None")
	t.Setenv("COOKIE_SECURE", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COOKIE_SECURE")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REFRESH_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_TTL")
}

func TestLoad_BootstrapFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("INITIAL_SUPER_ADMIN_USERNAME", " root ")
	t.Setenv("INITIAL_SUPER_ADMIN_EMAIL", "root@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.Bootstrap.Username)
	assert.Equal(t, "root@example.com", cfg.Bootstrap.Email)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, ,https://ops.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.CORSOrigins)
}
