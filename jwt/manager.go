package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// KindAccess marks a short-lived access credential.
	KindAccess = "access"
	// KindRefresh marks a long-lived refresh credential.
	KindRefresh = "refresh"
)

// ErrMissingSecret is returned by NewManager when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// Config defines a public type used by hireauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret       []byte
	Issuer       string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Leeway       time.Duration
	MaxFutureIAT time.Duration
	// Now overrides the clock used for signing and expiry checks.
	Now func() time.Time
}

// Manager signs and verifies HMAC-SHA256 claim sets for both credential kinds.
//
// Manager is a pure function of (token, secret, clock) and is safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the payload of a short-lived access credential.
type AccessClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Kind  string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh credential. It carries
// no email; the rotator re-reads it from the credential store.
type RefreshClaims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
//
// A missing secret is a configuration error and is reported as ErrMissingSecret.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must be longer than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured access credential lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL returns the configured refresh credential lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// SignAccess mints an access credential bound to uid with the given email and role snapshot.
func (m *Manager) SignAccess(uid, email, role string) (string, *AccessClaims, error) {
	claims := &AccessClaims{
		UID:              uid,
		Email:            email,
		Role:             role,
		Kind:             KindAccess,
		RegisteredClaims: m.registered(m.config.AccessTTL),
	}
	token, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// SignRefresh mints a refresh credential bound to uid.
func (m *Manager) SignRefresh(uid, role string) (string, *RefreshClaims, error) {
	claims := &RefreshClaims{
		UID:              uid,
		Role:             role,
		Kind:             KindRefresh,
		RegisteredClaims: m.registered(m.config.RefreshTTL),
	}
	token, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// VerifyAccess checks signature, expiry and kind of an access credential.
//
// Failures are always *VerificationError.
func (m *Manager) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, newVerificationError(Malformed, fmt.Errorf("unexpected token kind %q", claims.Kind))
	}
	if claims.UID == "" {
		return nil, newVerificationError(Malformed, errors.New("missing uid"))
	}
	if err := m.checkIssuedAt(claims.IssuedAt); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature, expiry and kind of a refresh credential.
func (m *Manager) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, newVerificationError(Malformed, fmt.Errorf("unexpected token kind %q", claims.Kind))
	}
	if claims.UID == "" {
		return nil, newVerificationError(Malformed, errors.New("missing uid"))
	}
	if err := m.checkIssuedAt(claims.IssuedAt); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := m.config.Now()
	rc := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if m.config.Issuer != "" {
		rc.Issuer = m.config.Issuer
	}
	return rc
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// parse relies on the library's ordering: structure first, then signature,
// then registered claims. That ordering is what gives Malformed precedence
// over SignatureInvalid over Expired.
func (m *Manager) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return classify(err)
	}
	if !token.Valid {
		return newVerificationError(Malformed, jwt.ErrTokenInvalidClaims)
	}
	return nil
}

func (m *Manager) checkIssuedAt(iat *jwt.NumericDate) error {
	if iat == nil {
		return newVerificationError(Malformed, errors.New("missing iat"))
	}
	if iat.Time.After(m.config.Now().Add(m.config.MaxFutureIAT)) {
		return newVerificationError(Malformed, errors.New("token iat too far in the future"))
	}
	return nil
}
