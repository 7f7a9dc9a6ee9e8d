package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/hireauth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsNeedOnlyASecret(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, hireauth.ErrConfiguration)

	cfg.Secret = testSecret
	require.NoError(t, cfg.Validate())
	assert.NoError(t, DefaultConfig().ValidateService())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "hireauth.yaml", `
server:
  addr: ":9000"
  secure_cookies: true
  allowed_origins: ["https://app.example.com"]
store:
  driver: sqlite
  dsn: "file:test.db"
auth:
  access_ttl: 10m
  max_login_attempts: 7
log:
  level: debug
`)
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep defaults.
	assert.Equal(t, 90*24*time.Hour, cfg.Auth.RefreshTTL)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "hireauth.toml", `
[server]
addr = ":9100"

[redis]
addr = "embedded"

[auth]
login_cooldown = "30m"
`)
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, RedisEmbedded, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LoginCooldown)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	yamlPath := writeFile(t, "bad.yaml", "server:\n  adr: \":1\"\n")
	assert.Error(t, DefaultConfig().LoadFile(yamlPath))

	tomlPath := writeFile(t, "bad.toml", "[server]\nadr = \":1\"\n")
	assert.Error(t, DefaultConfig().LoadFile(tomlPath))

	jsonPath := writeFile(t, "cfg.json", "{}")
	assert.Error(t, DefaultConfig().LoadFile(jsonPath))
}

func TestSecretIsNeverReadFromFile(t *testing.T) {
	path := writeFile(t, "secret.yaml", "secret: \"from-file\"\n")
	err := DefaultConfig().LoadFile(path)
	assert.Error(t, err, "secret is not a file key")
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"HIREAUTH_JWT_SECRET":      testSecret,
		"HIREAUTH_ADDR":            ":7000",
		"HIREAUTH_SECURE_COOKIES":  "true",
		"HIREAUTH_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
		"HIREAUTH_STORE_DRIVER":    "postgres",
		"HIREAUTH_DATABASE_URL":    "postgres://localhost/hire",
		"HIREAUTH_ACCESS_TTL":      "5m",
		"HIREAUTH_LOG_LEVEL":       "warn",
		"HIREAUTH_REDIS_ADDR":      "   ",

		"HIREAUTH_METRICS_LOG_INTERVAL": "30s",
	}))
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.Secret)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Log.MetricsInterval)
	assert.Empty(t, cfg.Redis.Addr, "blank values are ignored")
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	err := DefaultConfig().ApplyEnv(envMap(map[string]string{
		"HIREAUTH_SECURE_COOKIES": "maybe",
		"HIREAUTH_ACCESS_TTL":     "soon",
		"HIREAUTH_LOGIN_BURST":    "ten",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIREAUTH_SECURE_COOKIES")
	assert.Contains(t, err.Error(), "HIREAUTH_ACCESS_TTL")
	assert.Contains(t, err.Error(), "HIREAUTH_LOGIN_BURST")
}

func TestValidateService(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown driver":   func(c *Config) { c.Store.Driver = "mongo" },
		"postgres w/o dsn": func(c *Config) { c.Store.Driver = StorePostgres },
		"empty addr":       func(c *Config) { c.Server.Addr = " " },
		"bad log level":    func(c *Config) { c.Log.Level = "loud" },
		"bad log format":   func(c *Config) { c.Log.Format = "xml" },
		"negative metrics": func(c *Config) { c.Log.MetricsInterval = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.ValidateService())
		})
	}
}

func TestEngineConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secret = testSecret
	cfg.Auth.BcryptCost = 11
	cfg.Auth.MaxLoginAttempts = 9

	engine := cfg.Engine()
	assert.Equal(t, []byte(testSecret), engine.JWT.Secret)
	assert.Equal(t, 15*time.Minute, engine.JWT.AccessTTL)
	assert.Equal(t, 11, engine.Password.BcryptCost)
	assert.Equal(t, 9, engine.RateLimit.MaxLoginAttempts)

	opts := cfg.HTTP()
	assert.Equal(t, cfg.Server.AllowedOrigins, opts.AllowedOrigins)
	assert.Equal(t, cfg.Server.LoginBurst, opts.LoginBurst)
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	path := writeFile(t, ".env", "HIREAUTH_TEST_DOTENV=loaded\n")
	t.Setenv("HIREAUTH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("HIREAUTH_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("HIREAUTH_TEST_DOTENV"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
