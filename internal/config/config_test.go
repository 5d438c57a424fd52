package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("REVIEW_CACHE_TTL", "5m")
	t.Setenv("DEFAULT_TEMPLATE", "classic")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.ShareLinkSecret)
	assert.Equal(t, 5*time.Minute, cfg.ReviewCacheTTL)
	assert.Equal(t, "classic", cfg.DefaultTemplate)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	t.Setenv("SHARE_LINK_SECRET", strings.Repeat("b", 32))
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_ProductionRequiresOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	t.Setenv("SHARE_LINK_SECRET", strings.Repeat("b", 32))

	_, err := Load()

	assert.ErrorContains(t, err, "CORS_ALLOWED_ORIGINS")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SHARE_BASE_URL", "app.example.com/review")
	_, err = Load()
	assert.ErrorContains(t, err, "SHARE_BASE_URL")

	t.Setenv("SHARE_BASE_URL", "https://app.example.com/")
	t.Setenv("REVIEW_CACHE_TTL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "REVIEW_CACHE_TTL")
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "proposals")

	assert.Equal(t, "postgres://app:p%40ss@db:5432/proposals?sslmode=disable", getDatabaseURL())
}
