// Package config handles environment variable parsing and validation.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// AuthMode represents the SSH authentication mode.
type AuthMode string

const (
	AuthModeAllowlist AuthMode = "allowlist"
	AuthModePublic    AuthMode = "public"
)

// StateBackend selects where per-visitor client state (cart, wishlist, tokens) lives.
type StateBackend string

const (
	StateBackendMemory StateBackend = "memory"
	StateBackendFile   StateBackend = "file"
	StateBackendRedis  StateBackend = "redis"
)

// Config holds all application configuration.
type Config struct {
	// SSH server settings
	SSHAddr            string
	SSHHostKeyPath     string
	SSHAuthMode        AuthMode
	AllowlistPath      string
	AdminAllowlistPath string

	// Storefront API settings
	APIBaseURL string
	APITimeout time.Duration

	// Client state persistence
	StateBackend StateBackend
	StateDir     string
	RedisURL     string

	// Cache settings
	CacheTTL time.Duration

	// Presentation
	Currency string
	Locale   string

	// Operations
	MetricsAddr string
	ExportDir   string
	LogLevel    string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SSHAddr:            getEnv("SSH_ADDR", ":23234"),
		SSHHostKeyPath:     getEnv("SSH_HOSTKEY_PATH", "./.ssh_host_ed25519_key"),
		SSHAuthMode:        AuthMode(getEnv("SSH_AUTH_MODE", "allowlist")),
		AllowlistPath:      getEnv("SSH_ALLOWLIST_PATH", "./allowlist_authorized_keys"),
		AdminAllowlistPath: getEnv("SSH_ADMIN_ALLOWLIST_PATH", "./admin_authorized_keys"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://127.0.0.1:18080/api"),
		StateBackend:       StateBackend(getEnv("STATE_BACKEND", "file")),
		StateDir:           getEnv("STATE_DIR", "./state"),
		RedisURL:           getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		Currency:           getEnv("CURRENCY", "USD"),
		Locale:             getEnv("LOCALE", "en-US"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		ExportDir:          getEnv("EXPORT_DIR", "./exports"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Parse cache TTL
	ttlSeconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, errors.New("CACHE_TTL_SECONDS must be a valid integer")
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	timeoutSeconds, err := strconv.Atoi(getEnv("API_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, errors.New("API_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.APITimeout = time.Duration(timeoutSeconds) * time.Second

	// Validate auth mode
	if cfg.SSHAuthMode != AuthModeAllowlist && cfg.SSHAuthMode != AuthModePublic {
		return nil, errors.New("SSH_AUTH_MODE must be 'allowlist' or 'public'")
	}

	switch cfg.StateBackend {
	case StateBackendMemory, StateBackendFile, StateBackendRedis:
	default:
		return nil, errors.New("STATE_BACKEND must be 'memory', 'file' or 'redis'")
	}

	return cfg, nil
}

// MockConfig holds the configuration of the mock REST backend.
type MockConfig struct {
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration
	LoginRPS  float64
	LogLevel  string
}

// LoadMock reads the mock backend configuration from environment variables.
func LoadMock() (*MockConfig, error) {
	cfg := &MockConfig{
		Addr:      getEnv("MOCKAPI_ADDR", ":18080"),
		JWTSecret: getEnv("MOCKAPI_JWT_SECRET", "lookbook-dev-secret"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	rps, err := strconv.ParseFloat(getEnv("MOCKAPI_LOGIN_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("MOCKAPI_LOGIN_RPS must be a positive number")
	}
	cfg.LoginRPS = rps

	ttlHours, err := strconv.Atoi(getEnv("MOCKAPI_TOKEN_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, errors.New("MOCKAPI_TOKEN_TTL_HOURS must be a positive integer")
	}
	cfg.TokenTTL = time.Duration(ttlHours) * time.Hour

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
