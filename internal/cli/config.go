package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	redisstore "github.com/aussiebroadwan/lmsconsole/internal/storage/redis"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

// State backends for the persisted session.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	APIURL         string        // LMS backend base URL (default: http://localhost:8080)
	StateBackend   string        // sqlite, redis or memory (default: sqlite)
	StateFile      string        // sqlite file (default: <user config dir>/lmsctl/state.db)
	Redis          redisstore.Config
	HTTPTimeout    time.Duration // Per-request timeout (default: 10s)
	RefreshTimeout time.Duration // Upper bound on a token refresh (default: 15s)

	Env       string // Environment (dev, staging, prod) (default: prod)
	LogLevel  string // Log level (debug, info, warn, error) (default: warn)
	LogFormat string // Log format (json, text) (default: text)
}

// LoadConfig reads .env (when present) and the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("LMS_REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LMS_REDIS_DB: %w", err)
	}

	cfg := Config{
		APIURL:       getEnv("LMS_API_URL", "http://localhost:8080"),
		StateBackend: getEnv("LMS_STATE_BACKEND", BackendSQLite),
		StateFile:    getEnv("LMS_STATE_FILE", defaultStateFile()),
		Redis: redisstore.Config{
			Addr:     getEnv("LMS_REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("LMS_REDIS_PASSWORD"),
			DB:       redisDB,
			Prefix:   getEnv("LMS_REDIS_PREFIX", redisstore.DefaultPrefix),
			TTL:      getEnvAsDuration("LMS_REDIS_TTL", 0),
		},
		HTTPTimeout:    getEnvAsDuration("LMS_HTTP_TIMEOUT", 10*time.Second),
		RefreshTimeout: getEnvAsDuration("LMS_REFRESH_TIMEOUT", lmsclient.DefaultRefreshTimeout),

		Env:       getEnv("ENV", "prod"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	switch cfg.StateBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("invalid LMS_STATE_BACKEND %q: want sqlite, redis or memory", cfg.StateBackend)
	}

	return cfg, nil
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lmsctl.db"
	}
	return filepath.Join(dir, "lmsctl", "state.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
