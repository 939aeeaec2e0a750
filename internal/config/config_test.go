package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseAndRedis(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.ErrorContains(t, err, "DATABASE_URL")

	_, err = LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/empaques",
		"REDIS_URL":    "",
	})
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/empaques",
		"REDIS_URL":    "redis://localhost:6379/0",
		"PORT":         "",
		"SALES_EMAIL":  "",
	})
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "ventas@empaques.mx", cfg.SalesEmail)
	require.Equal(t, "cdmx-metro", cfg.DefaultZoneID)
	require.Equal(t, int64(100), cfg.DefaultUnitWeightGrams)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, int64(60), cfg.RateLimitMax)
	require.Equal(t, "sliding", cfg.RateLimitBackend)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":              "postgres://localhost:5432/empaques",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"PORT":                      "9090",
		"CORS_ALLOWED_ORIGINS":      "https://empaques.mx, https://www.empaques.mx",
		"DEFAULT_ZONE_ID":           "norte",
		"DEFAULT_UNIT_WEIGHT_GRAMS": "250",
		"CATALOG_CACHE_TTL":         "30s",
		"RATE_LIMIT_MAX":            "120",
		"RATE_LIMIT_BACKEND":        "ulule",
		"RUN_MIGRATIONS":            "true",
	})
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://empaques.mx", "https://www.empaques.mx"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "norte", cfg.DefaultZoneID)
	require.Equal(t, int64(250), cfg.DefaultUnitWeightGrams)
	require.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	require.Equal(t, int64(120), cfg.RateLimitMax)
	require.Equal(t, "ulule", cfg.RateLimitBackend)
	require.True(t, cfg.RunMigrations)
}
