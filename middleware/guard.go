package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/hireauth"
)

// AccessCookieName is the cookie carrying the access credential.
const AccessCookieName = "access_token"

// Verifier is the part of *hireauth.Engine the guards need.
type Verifier interface {
	Verify(ctx context.Context, token string) (hireauth.VerifiedIdentity, error)
}

// IdentityFromContext returns the identity injected by Guard.
func IdentityFromContext(ctx context.Context) (hireauth.VerifiedIdentity, bool) {
	return hireauth.IdentityFromContext(ctx)
}

// Guard verifies the access credential of every request before calling next.
// The credential is read from the access_token cookie, falling back to an
// Authorization: Bearer header. Requests without a valid credential get 401
// and next is not called. A guard without a verifier answers 500.
func Guard(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				WriteMessage(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			token, ok := AccessToken(r)
			if !ok {
				WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, hireauth.ErrEngineNotReady) {
					WriteMessage(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(hireauth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole must be mounted behind Guard. It answers 403 unless the
// verified identity holds one of roles.
func RequireRole(roles ...hireauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := hireauth.IdentityFromContext(r.Context())
			if !ok {
				WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if err := hireauth.RequireRole(identity, roles...); err != nil {
				WriteMessage(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessToken extracts the access credential from r.
func AccessToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
