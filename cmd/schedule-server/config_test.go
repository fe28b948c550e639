package main

import (
	"os"
	"path/filepath"
	"schedule-backend/lib/configutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestResolveDefaults(t *testing.T) {
	settings, err := Config{JwtSecret: testSecret}.resolve()
	require.NoError(t, err)

	require.Equal(t, 8000, settings.port)
	require.Equal(t, 5.0, settings.client.RequestsPerSecond)
	require.Equal(t, 5, settings.client.Burst)
	require.Equal(t, []string{"*"}, settings.handler.AllowedOrigins)
	require.Equal(t, 2*time.Minute, settings.handler.RequestTimeout)
	require.Equal(t, 0, settings.service.LessonCacheSize)
	require.Equal(t, 10*time.Minute, settings.service.LessonCacheTTL)
}

func TestResolveErrors(t *testing.T) {
	testCases := []Config{
		{},
		{JwtSecret: "short"},
		{JwtSecret: testSecret, TokenTtl: "fifteen minutes"},
		{JwtSecret: testSecret, RequestTimeout: "-1s"},
		{JwtSecret: testSecret, LessonCache: LessonCacheConfig{Ttl: "1y"}},
	}
	for _, cfg := range testCases {
		_, err := cfg.resolve()
		require.Error(t, err, "%+v", cfg)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCHEDULE_TEST_JWT_SECRET", testSecret)

	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// comments are allowed
		port: 9000,
		jwt_secret: "${SCHEDULE_TEST_JWT_SECRET}",
		allowed_origins: ["https://schema.example"],
		rate_limit: { per_second: 2, burst: 4 },
		lesson_cache: { size: 128, ttl: "5m" },
		endpoints: { host: "fns.example" },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := configutil.ReadConfig[Config](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	settings, err := cfg.resolve()
	require.NoError(t, err)

	require.Equal(t, 9000, settings.port)
	require.Equal(t, 2.0, settings.client.RequestsPerSecond)
	require.Equal(t, 4, settings.client.Burst)
	require.Equal(t, "fns.example", settings.client.Endpoints.Host)
	require.Equal(t, 128, settings.service.LessonCacheSize)
	require.Equal(t, 5*time.Minute, settings.service.LessonCacheTTL)
	require.Equal(t, []string{"https://schema.example"}, settings.handler.AllowedOrigins)
}
