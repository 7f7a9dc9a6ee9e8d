package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/hireauth/jwt"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureUnknownUser
	LoginFailureBadPassword
	LoginFailureStore
	LoginFailureIssue
)

// LoginResult carries either the issued pair or failure metadata.
type LoginResult struct {
	Failure       LoginFailureKind
	Err           error
	Email         string
	User          UserRecord
	AccessToken   string
	AccessClaims  *jwt.AccessClaims
	RefreshToken  string
	RefreshClaims *jwt.RefreshClaims
}

// LoginDeps captures login flow dependencies. The rate hooks may be nil when
// throttling is disabled.
type LoginDeps struct {
	ClientIPFromContext func(context.Context) string

	CheckLoginRate     func(ctx context.Context, email, ip string) error
	IncrementLoginRate func(ctx context.Context, email, ip string) error
	ResetLoginRate     func(ctx context.Context, email, ip string) error
	RateLimited        error

	GetUserByEmail func(context.Context, string) (UserRecord, error)
	UserNotFound   error

	VerifyPassword       func(password, hash string) (bool, error)
	Equalize             func(password string)
	PasswordNeedsUpgrade func(hash string) (bool, error)
	HashPassword         func(string) (string, error)
	// UpdatePasswordHash is optional; when set, outdated hashes are upgraded after a successful login.
	UpdatePasswordHash func(ctx context.Context, userID, hash string) error

	Tokens *jwt.Manager
	Warn   func(string, ...any)
}

// NormalizeEmail is the canonical form used as store key and limiter key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RunLogin authenticates email/password and mints an access/refresh pair from
// the same identity snapshot.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	email = NormalizeEmail(email)
	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, email, ip); err != nil {
			if errors.Is(err, deps.RateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err, Email: email}
			}
			// Limiter backend errors do not block authentication.
			deps.Warn("login rate check failed", "error", err)
		}
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.UserNotFound) {
			deps.Equalize(password)
			recordFailure(ctx, email, ip, deps)
			return LoginResult{Failure: LoginFailureUnknownUser, Err: err, Email: email}
		}
		return LoginResult{Failure: LoginFailureStore, Err: err, Email: email}
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		recordFailure(ctx, email, ip, deps)
		return LoginResult{Failure: LoginFailureBadPassword, Err: err, Email: email, User: user}
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, ip); err != nil {
			deps.Warn("login rate reset failed", "error", err)
		}
	}
	if deps.UpdatePasswordHash != nil {
		upgradePasswordHash(ctx, password, user, deps)
	}

	access, accessClaims, err := deps.Tokens.SignAccess(user.UserID, user.Email, user.Role)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Email: email, User: user}
	}
	refresh, refreshClaims, err := deps.Tokens.SignRefresh(user.UserID, user.Role)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Email: email, User: user}
	}

	return LoginResult{
		Email:         email,
		User:          user,
		AccessToken:   access,
		AccessClaims:  accessClaims,
		RefreshToken:  refresh,
		RefreshClaims: refreshClaims,
	}
}

func recordFailure(ctx context.Context, email, ip string, deps LoginDeps) {
	if deps.IncrementLoginRate == nil {
		return
	}
	if err := deps.IncrementLoginRate(ctx, email, ip); err != nil && !errors.Is(err, deps.RateLimited) {
		deps.Warn("login rate increment failed", "error", err)
	}
}

func upgradePasswordHash(ctx context.Context, password string, user UserRecord, deps LoginDeps) {
	need, err := deps.PasswordNeedsUpgrade(user.PasswordHash)
	if err != nil || !need {
		return
	}
	hash, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("password rehash failed", "user_id", user.UserID, "error", err)
		return
	}
	if err := deps.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		deps.Warn("password hash upgrade failed", "user_id", user.UserID, "error", err)
	}
}
