package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/lmsconsole/pkg/jwtx"
)

type Config struct {
	Issuer         string        // Issuer claim for access tokens (default: lms-mock)
	SigningKeyFile string        // Optional: PEM file holding the Ed25519 signing key; empty means ephemeral
	Pepper         string        // Optional: pepper mixed into password hashes
	AccessTTL      time.Duration // Access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Refresh token lifetime (default: 7 days)
	LoginRateLimit int           // Login attempts per minute per IP and email (default: 5)

	AdminEmail      string // Seeded admin account (default: admin@lms.local)
	AdminPassword   string // (default: admin)
	TeacherEmail    string // Seeded teacher account (default: teacher@lms.local)
	TeacherPassword string // (default: teacher)
	SeedSampleData  bool   // Seed a sample course, group and quiz (default: true)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("MOCK_ISSUER", "lms-mock"),
		SigningKeyFile: os.Getenv("MOCK_SIGNING_KEY_FILE"),
		Pepper:         os.Getenv("MOCK_PEPPER"),
		AccessTTL:      getEnvDurationOrDefault("MOCK_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("MOCK_REFRESH_TTL", 7*24*time.Hour),
		LoginRateLimit: getEnvIntOrDefault("MOCK_LOGIN_RATE_LIMIT", 5),

		AdminEmail:      getEnvOrDefault("MOCK_ADMIN_EMAIL", "admin@lms.local"),
		AdminPassword:   getEnvOrDefault("MOCK_ADMIN_PASSWORD", "admin"),
		TeacherEmail:    getEnvOrDefault("MOCK_TEACHER_EMAIL", "teacher@lms.local"),
		TeacherPassword: getEnvOrDefault("MOCK_TEACHER_PASSWORD", "teacher"),
		SeedSampleData:  getEnvBoolOrDefault("MOCK_SEED_SAMPLE_DATA", true),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("MOCK_PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("MOCK_HOUSEKEEPING_INTERVAL", time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds, so short test TTLs stay easy to write
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
