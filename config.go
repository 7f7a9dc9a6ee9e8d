package hireauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/hireauth/password"
)

const (
	// DefaultAccessTTL is the fixed access credential lifetime.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the fixed refresh credential lifetime.
	DefaultRefreshTTL = 90 * 24 * time.Hour
	minSecretBytes    = 32
)

// Config defines a public type used by hireauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls credential signing.
type JWTConfig struct {
	// Secret is the process-wide HMAC key. Required.
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig controls hashing and the registration password policy.
type PasswordConfig struct {
	Algorithm   string // "bcrypt" (default) or "argon2id"
	BcryptCost  int
	Memory      uint32 // argon2id, KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
	MaxLength   int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig controls Redis-backed login throttling. It only takes
// effect when a Redis client is supplied to the Builder.
type RateLimitConfig struct {
	Enabled               bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
	KeyPrefix             string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults. The JWT secret is left empty
// and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:     "hireauth",
			AccessTTL:  DefaultAccessTTL,
			RefreshTTL: DefaultRefreshTTL,
		},
		Password: PasswordConfig{
			Algorithm:   password.AlgorithmBcrypt,
			BcryptCost:  12,
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
			MaxLength:   password.MaxBcryptBytes,
		},
		RateLimit: RateLimitConfig{
			Enabled:               true,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
			KeyPrefix:             "ha",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports configuration errors. Every returned error matches ErrConfiguration.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWT.Secret) == 0 {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt access TTL must be positive"))
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		errs = append(errs, errors.New("jwt refresh TTL must be longer than access TTL"))
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		errs = append(errs, errors.New("jwt leeway must be within [0, 2m]"))
	}
	switch c.Password.Algorithm {
	case "", password.AlgorithmBcrypt, password.AlgorithmArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unsupported password algorithm %q", c.Password.Algorithm))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("password min length must be >= 1"))
	}
	if c.Password.MaxLength < c.Password.MinLength {
		errs = append(errs, errors.New("password max length must be >= min length"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxLoginAttempts <= 0 {
			errs = append(errs, errors.New("rate limit max login attempts must be positive"))
		}
		if c.RateLimit.LoginCooldownDuration <= 0 {
			errs = append(errs, errors.New("rate limit cooldown must be positive"))
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		errs = append(errs, errors.New("audit buffer size must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}

// Lint returns advisory warnings for configurations that are valid but weak.
func (c Config) Lint() []string {
	var warnings []string
	if n := len(c.JWT.Secret); n > 0 && n < minSecretBytes {
		warnings = append(warnings, fmt.Sprintf("jwt secret is %d bytes; use at least %d", n, minSecretBytes))
	}
	if c.JWT.AccessTTL != DefaultAccessTTL {
		warnings = append(warnings, fmt.Sprintf("access TTL %s differs from the standard %s", c.JWT.AccessTTL, DefaultAccessTTL))
	}
	if c.JWT.RefreshTTL != DefaultRefreshTTL {
		warnings = append(warnings, fmt.Sprintf("refresh TTL %s differs from the standard %s", c.JWT.RefreshTTL, DefaultRefreshTTL))
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		warnings = append(warnings, "jwt issuer is empty; tokens from other issuers sharing the secret would be accepted")
	}
	if c.Password.Algorithm != password.AlgorithmArgon2id && c.Password.BcryptCost != 0 && c.Password.BcryptCost < 10 {
		warnings = append(warnings, "bcrypt cost below 10")
	}
	if !c.RateLimit.Enabled {
		warnings = append(warnings, "login rate limiting is disabled")
	}
	return warnings
}

// NewPasswordHasher returns the hasher an engine built from c would use.
// Administrative tools use it without a signing secret.
func NewPasswordHasher(c Config) (*password.Hasher, error) {
	return password.New(c.passwordConfig())
}

func (c Config) passwordConfig() password.Config {
	return password.Config{
		Algorithm:  c.Password.Algorithm,
		BcryptCost: c.Password.BcryptCost,
		Argon2: password.Argon2Config{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
		},
	}
}

func cloneConfig(c Config) Config {
	out := c
	if c.JWT.Secret != nil {
		out.JWT.Secret = append([]byte(nil), c.JWT.Secret...)
	}
	return out
}
