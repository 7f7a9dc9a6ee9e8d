package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UnverifiedClaims is a decode-only view of a credential. Its signature has
// NOT been checked; it is only good for scheduling and UI hints and has no
// conversion to an authenticated identity.
type UnverifiedClaims struct {
	UserID    string
	Email     string
	Role      string
	Kind      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DecodeUnverified reads the claims of token without verifying its signature.
func DecodeUnverified(token string) (UnverifiedClaims, error) {
	var raw struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Role  string `json:"role"`
		Kind  string `json:"typ"`
		jwt.RegisteredClaims
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return UnverifiedClaims{}, err
	}
	if raw.ExpiresAt == nil {
		return UnverifiedClaims{}, errors.New("token has no expiry")
	}

	out := UnverifiedClaims{
		UserID:    raw.UID,
		Email:     raw.Email,
		Role:      raw.Role,
		Kind:      raw.Kind,
		ExpiresAt: raw.ExpiresAt.Time,
	}
	if raw.IssuedAt != nil {
		out.IssuedAt = raw.IssuedAt.Time
	}
	return out, nil
}

// Until returns how long remains before the decoded expiry, relative to now.
func (c UnverifiedClaims) Until(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}
