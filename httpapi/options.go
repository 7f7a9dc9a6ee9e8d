package httpapi

import (
	"context"
	"net/http"
	"time"
)

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins allowed to send credentialed requests.
	AllowedOrigins []string
	// SecureCookies sets the Secure attribute on credential cookies.
	SecureCookies bool
	CookieDomain  string

	// LoginRatePerSecond and LoginBurst bound per-IP request rate on the
	// unauthenticated credential endpoints. Zero disables the limiter.
	LoginRatePerSecond float64
	LoginBurst         int

	MaxBodyBytes   int64
	RequestTimeout time.Duration

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// HealthCheck backs /healthz when set.
	HealthCheck func(context.Context) error
}

// DefaultOptions returns development-friendly defaults.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins:     []string{"http://localhost:3000"},
		LoginRatePerSecond: 5,
		LoginBurst:         10,
		MaxBodyBytes:       1 << 20,
		RequestTimeout:     30 * time.Second,
	}
}
