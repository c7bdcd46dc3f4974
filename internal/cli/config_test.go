package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	redisstore "github.com/aussiebroadwan/lmsconsole/internal/storage/redis"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"LMS_API_URL", "LMS_STATE_BACKEND", "LMS_REDIS_DB", "LMS_REDIS_PREFIX", "LMS_HTTP_TIMEOUT", "LMS_REFRESH_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.APIURL)
	require.Equal(t, BackendSQLite, cfg.StateBackend)
	require.NotEmpty(t, cfg.StateFile)
	require.Equal(t, redisstore.DefaultPrefix, cfg.Redis.Prefix)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, lmsclient.DefaultRefreshTimeout, cfg.RefreshTimeout)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LMS_API_URL", "https://lms.example.com/api")
	t.Setenv("LMS_STATE_BACKEND", BackendRedis)
	t.Setenv("LMS_REDIS_ADDR", "redis:6379")
	t.Setenv("LMS_REDIS_DB", "3")
	t.Setenv("LMS_REDIS_TTL", "24h")
	t.Setenv("LMS_HTTP_TIMEOUT", "3")
	t.Setenv("LMS_REFRESH_TIMEOUT", "nonsense")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://lms.example.com/api", cfg.APIURL)
	require.Equal(t, BackendRedis, cfg.StateBackend)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 3, cfg.Redis.DB)
	require.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, lmsclient.DefaultRefreshTimeout, cfg.RefreshTimeout)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("LMS_STATE_BACKEND", "etcd")

	_, err := LoadConfig()
	require.ErrorContains(t, err, `invalid LMS_STATE_BACKEND "etcd"`)
}

func TestLoadConfigRejectsBadRedisDB(t *testing.T) {
	t.Setenv("LMS_STATE_BACKEND", "")
	t.Setenv("LMS_REDIS_DB", "first")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "invalid LMS_REDIS_DB")
}
