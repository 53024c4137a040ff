package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
)

// Profile limit defaults applied when the config file omits them.
const (
	DefaultNameChangeLimit = 3
	DefaultAuthTokenLimit  = 5
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// ProfileConfig holds lifetime limits applied to profile credentials.
type ProfileConfig struct {
	NameChangeLimit int `yaml:"name-change-limit"` // Max accepted username changes per account.
	AuthTokenLimit  int `yaml:"auth-token-limit"`  // Max outstanding API tokens per account.
}

// ProviderConfig holds the OAuth entry settings for one external provider.
// Only the authorize redirect is built here; the token exchange is owned by
// the authentication completion service.
type ProviderConfig struct {
	ClientID    string   `yaml:"client-id"`
	RedirectURI string   `yaml:"redirect-uri"`
	Scopes      []string `yaml:"scopes"`
}

// RateLimitConfig holds per-second request rate limit settings.
type RateLimitConfig struct {
	Limit         int    `yaml:"limit"` // Requests per second per user, 0 disables.
	RedisEnabled  bool   `yaml:"redis-enabled"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// LoadProfileConfig loads profile limit settings from the YAML config file.
// A missing file or section yields defaults; explicit zero or negative values
// are clamped back to defaults because a zero limit would brick the account.
func LoadProfileConfig(configPath string) (ProfileConfig, error) {
	// fileConfig maps the YAML fields needed for profile limits.
	type fileConfig struct {
		Profile ProfileConfig `yaml:"profile"`
	}

	result := ProfileConfig{
		NameChangeLimit: DefaultNameChangeLimit,
		AuthTokenLimit:  DefaultAuthTokenLimit,
	}

	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		return result, nil
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return result, fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if cfg.Profile.NameChangeLimit > 0 {
		result.NameChangeLimit = cfg.Profile.NameChangeLimit
	}
	if cfg.Profile.AuthTokenLimit > 0 {
		result.AuthTokenLimit = cfg.Profile.AuthTokenLimit
	}
	return result, nil
}

// LoadProviderConfigs loads OAuth provider settings keyed by provider name.
func LoadProviderConfigs(configPath string) (map[string]ProviderConfig, error) {
	// fileConfig maps the YAML fields needed for provider settings.
	type fileConfig struct {
		Providers map[string]ProviderConfig `yaml:"providers"`
	}

	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		return map[string]ProviderConfig{}, nil
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	out := make(map[string]ProviderConfig, len(cfg.Providers))
	for name, provider := range cfg.Providers {
		key := strings.ToUpper(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		out[key] = provider
	}
	return out, nil
}

// LoadRateLimitConfig loads request rate limit settings from the YAML config file.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	// fileConfig maps the YAML fields needed for rate limit settings.
	type fileConfig struct {
		RateLimit RateLimitConfig `yaml:"rate-limit"`
	}

	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		return RateLimitConfig{}, nil
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return RateLimitConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	result := cfg.RateLimit
	if result.Limit < 0 {
		result.Limit = 0
	}
	if result.RedisDB < 0 {
		result.RedisDB = 0
	}
	result.RedisAddr = strings.TrimSpace(result.RedisAddr)
	result.RedisPrefix = strings.TrimSpace(result.RedisPrefix)
	return result, nil
}
