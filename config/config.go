// Package config loads service configuration for cmd/hireauth.
//
// Values are layered: defaults, then an optional YAML or TOML file, then
// HIREAUTH_* environment variables (optionally seeded from a .env file).
// The signing secret is only read from the environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/httpapi"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// RedisEmbedded starts an in-process miniredis instead of dialing a server.
const RedisEmbedded = "embedded"

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Store  StoreConfig  `yaml:"store" toml:"store"`
	Redis  RedisConfig  `yaml:"redis" toml:"redis"`
	Auth   AuthConfig   `yaml:"auth" toml:"auth"`
	Log    LogConfig    `yaml:"log" toml:"log"`

	// Secret is the JWT signing key, from HIREAUTH_JWT_SECRET only.
	Secret string `yaml:"-" toml:"-"`
}

// ServerConfig controls the HTTP listener and cookie attributes.
type ServerConfig struct {
	Addr               string        `yaml:"addr" toml:"addr"`
	ReadTimeout        time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	RequestTimeout     time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	SecureCookies      bool          `yaml:"secure_cookies" toml:"secure_cookies"`
	CookieDomain       string        `yaml:"cookie_domain" toml:"cookie_domain"`
	AllowedOrigins     []string      `yaml:"allowed_origins" toml:"allowed_origins"`
	LoginRatePerSecond float64       `yaml:"login_rate_per_second" toml:"login_rate_per_second"`
	LoginBurst         int           `yaml:"login_burst" toml:"login_burst"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// StoreConfig selects the credential store.
type StoreConfig struct {
	Driver      string `yaml:"driver" toml:"driver"`
	DSN         string `yaml:"dsn" toml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate" toml:"auto_migrate"`
}

// RedisConfig enables login throttling. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

// AuthConfig carries the engine settings that operators tune.
type AuthConfig struct {
	Issuer            string        `yaml:"issuer" toml:"issuer"`
	AccessTTL         time.Duration `yaml:"access_ttl" toml:"access_ttl"`
	RefreshTTL        time.Duration `yaml:"refresh_ttl" toml:"refresh_ttl"`
	Leeway            time.Duration `yaml:"leeway" toml:"leeway"`
	PasswordAlgorithm string        `yaml:"password_algorithm" toml:"password_algorithm"`
	BcryptCost        int           `yaml:"bcrypt_cost" toml:"bcrypt_cost"`
	MinPasswordLength int           `yaml:"min_password_length" toml:"min_password_length"`
	MaxLoginAttempts  int           `yaml:"max_login_attempts" toml:"max_login_attempts"`
	LoginCooldown     time.Duration `yaml:"login_cooldown" toml:"login_cooldown"`
	IPThrottle        bool          `yaml:"ip_throttle" toml:"ip_throttle"`
	AuditBufferSize   int           `yaml:"audit_buffer_size" toml:"audit_buffer_size"`
}

// LogConfig selects zap's level and encoder. A positive MetricsInterval
// also writes engine metrics to the log at that period.
type LogConfig struct {
	Level           string        `yaml:"level" toml:"level"`
	Format          string        `yaml:"format" toml:"format"` // json or console
	MetricsInterval time.Duration `yaml:"metrics_interval" toml:"metrics_interval"`
}

// DefaultConfig returns development-friendly defaults: in-memory store, no
// Redis, insecure cookies.
func DefaultConfig() *Config {
	engine := hireauth.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:               ":8080",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RequestTimeout:     30 * time.Second,
			AllowedOrigins:     []string{"http://localhost:3000"},
			LoginRatePerSecond: 5,
			LoginBurst:         10,
			MaxBodyBytes:       1 << 20,
		},
		Store: StoreConfig{
			Driver:      StoreMemory,
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			Issuer:            engine.JWT.Issuer,
			AccessTTL:         engine.JWT.AccessTTL,
			RefreshTTL:        engine.JWT.RefreshTTL,
			PasswordAlgorithm: engine.Password.Algorithm,
			BcryptCost:        engine.Password.BcryptCost,
			MinPasswordLength: engine.Password.MinLength,
			MaxLoginAttempts:  engine.RateLimit.MaxLoginAttempts,
			LoginCooldown:     engine.RateLimit.LoginCooldownDuration,
			IPThrottle:        engine.RateLimit.EnableIPThrottle,
			AuditBufferSize:   engine.Audit.BufferSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the service settings and the derived engine settings,
// including the signing secret.
func (c *Config) Validate() error {
	if err := c.ValidateService(); err != nil {
		return err
	}
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateService checks everything except the engine settings. Commands
// that never sign credentials, such as migrate, use it.
func (c *Config) ValidateService() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.LoginRatePerSecond < 0 {
		errs = append(errs, errors.New("server.login_rate_per_second must be >= 0"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be > 0"))
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres, StoreSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, postgres, sqlite", c.Store.Driver))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	if c.Log.MetricsInterval < 0 {
		errs = append(errs, errors.New("log.metrics_interval must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

// Engine converts c into the engine configuration.
func (c *Config) Engine() hireauth.Config {
	cfg := hireauth.DefaultConfig()
	if c.Secret != "" {
		cfg.JWT.Secret = []byte(c.Secret)
	}
	cfg.JWT.Issuer = c.Auth.Issuer
	cfg.JWT.AccessTTL = c.Auth.AccessTTL
	cfg.JWT.RefreshTTL = c.Auth.RefreshTTL
	cfg.JWT.Leeway = c.Auth.Leeway
	cfg.Password.Algorithm = c.Auth.PasswordAlgorithm
	cfg.Password.BcryptCost = c.Auth.BcryptCost
	cfg.Password.MinLength = c.Auth.MinPasswordLength
	cfg.RateLimit.MaxLoginAttempts = c.Auth.MaxLoginAttempts
	cfg.RateLimit.LoginCooldownDuration = c.Auth.LoginCooldown
	cfg.RateLimit.EnableIPThrottle = c.Auth.IPThrottle
	cfg.Audit.BufferSize = c.Auth.AuditBufferSize
	return cfg
}

// HTTP converts c into httpapi options. Metrics and health hooks are left
// for the caller.
func (c *Config) HTTP() httpapi.Options {
	return httpapi.Options{
		AllowedOrigins:     slices.Clone(c.Server.AllowedOrigins),
		SecureCookies:      c.Server.SecureCookies,
		CookieDomain:       c.Server.CookieDomain,
		LoginRatePerSecond: c.Server.LoginRatePerSecond,
		LoginBurst:         c.Server.LoginBurst,
		MaxBodyBytes:       c.Server.MaxBodyBytes,
		RequestTimeout:     c.Server.RequestTimeout,
	}
}
