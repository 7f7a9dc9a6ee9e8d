package hireauth

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/hireauth/internal/flows"
	"github.com/MrEthical07/hireauth/internal/rate"
	"github.com/MrEthical07/hireauth/password"
)

func (e *Engine) buildFlowDeps() flows.Deps {
	loginDeps := flows.LoginDeps{
		ClientIPFromContext:  clientIPFromContext,
		RateLimited:          rate.ErrRateLimited,
		GetUserByEmail:       e.userByEmail,
		UserNotFound:         ErrIdentityNotFound,
		VerifyPassword:       e.passwordHash.Verify,
		Equalize:             e.passwordHash.Equalize,
		PasswordNeedsUpgrade: e.passwordHash.NeedsRehash,
		HashPassword:         e.passwordHash.Hash,
		Tokens:               e.jwtManager,
		Warn:                 e.warn,
	}
	if e.rateLimiter != nil {
		loginDeps.CheckLoginRate = e.rateLimiter.CheckLogin
		loginDeps.IncrementLoginRate = e.rateLimiter.IncrementLogin
		loginDeps.ResetLoginRate = e.rateLimiter.ResetLogin
	}
	if updater, ok := e.store.(PasswordHashUpdater); ok {
		loginDeps.UpdatePasswordHash = updater.UpdatePasswordHash
	}

	verifyDeps := flows.VerifyDeps{Tokens: e.jwtManager}
	if e.metrics.LatencyEnabled() {
		verifyDeps.Now = time.Now
		verifyDeps.Since = time.Since
	}

	maxBytes := e.config.Password.MaxLength
	if algo := e.config.Password.Algorithm; (algo == "" || algo == password.AlgorithmBcrypt) &&
		(maxBytes <= 0 || maxBytes > password.MaxBcryptBytes) {
		maxBytes = password.MaxBcryptBytes
	}

	return flows.Deps{
		Login:  loginDeps,
		Verify: verifyDeps,
		Refresh: flows.RefreshDeps{
			Tokens:       e.jwtManager,
			GetUserByID:  e.userByID,
			UserNotFound: ErrIdentityNotFound,
		},
		Logout: flows.LogoutDeps{Tokens: e.jwtManager},
		Register: flows.RegisterDeps{
			MinPasswordLength: e.config.Password.MinLength,
			MaxPasswordBytes:  maxBytes,
			DefaultRole:       string(RoleApplicant),
			HashPassword:      e.passwordHash.Hash,
			CreateUser:        e.createUser,
			AccountExists:     ErrAccountExists,
		},
	}
}

func (e *Engine) userByEmail(ctx context.Context, email string) (flows.UserRecord, error) {
	identity, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toUserRecord(identity), nil
}

func (e *Engine) userByID(ctx context.Context, userID string) (flows.UserRecord, error) {
	identity, err := e.store.GetByID(ctx, userID)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toUserRecord(identity), nil
}

func (e *Engine) createUser(ctx context.Context, fullName, email, role, hash string) (flows.UserRecord, error) {
	r := Role(role)
	if !r.Valid() {
		return flows.UserRecord{}, fmt.Errorf("invalid role %q", role)
	}
	identity, err := e.store.Create(ctx, CreateIdentityInput{
		FullName:     fullName,
		Email:        email,
		Role:         r,
		PasswordHash: hash,
	})
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toUserRecord(identity), nil
}

func (e *Engine) warn(msg string, keysAndValues ...any) {
	e.logger.Sugar().Warnw(msg, keysAndValues...)
}

func toUserRecord(identity Identity) flows.UserRecord {
	return flows.UserRecord{
		UserID:       identity.UserID,
		FullName:     identity.FullName,
		Email:        identity.Email,
		Role:         string(identity.Role),
		PasswordHash: identity.PasswordHash,
	}
}
