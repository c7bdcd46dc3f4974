package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"MOCK_ISSUER", "MOCK_ACCESS_TTL", "MOCK_PORT", "MOCK_SEED_SAMPLE_DATA"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "lms-mock", cfg.Issuer)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.SeedSampleData)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MOCK_ISSUER", "elsewhere")
	t.Setenv("MOCK_ACCESS_TTL", "5")
	t.Setenv("MOCK_REFRESH_TTL", "2h")
	t.Setenv("MOCK_PORT", "9090")
	t.Setenv("MOCK_SEED_SAMPLE_DATA", "false")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "not-a-duration")

	cfg := LoadConfig()
	require.Equal(t, "elsewhere", cfg.Issuer)
	require.Equal(t, 5*time.Second, cfg.AccessTTL)
	require.Equal(t, 2*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 9090, cfg.Port)
	require.False(t, cfg.SeedSampleData)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}
