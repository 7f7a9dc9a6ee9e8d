package hireauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/hireauth/internal/audit"
	"github.com/MrEthical07/hireauth/internal/flows"
	"github.com/MrEthical07/hireauth/internal/rate"
	"github.com/MrEthical07/hireauth/jwt"
	"github.com/MrEthical07/hireauth/password"
	"go.uber.org/zap"
)

// Engine issues, verifies and renews credentials. It keeps no per-session
// state: the only shared mutable state is metrics counters and the audit
// buffer, so all methods are safe for concurrent use.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	store        CredentialStore
	rateLimiter  *rate.Limiter
	audit        *audit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
	logger       *zap.Logger
	clock        func() time.Time
	flows        flows.Deps
}

// Close flushes buffered audit events and stops the dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:      map[MetricID]uint64{},
			Histograms:    map[MetricID][]uint64{},
			HistogramSums: map[MetricID]time.Duration{},
		}
	}
	return e.metrics.Snapshot()
}

// AccessTTL is the lifetime of issued access credentials.
func (e *Engine) AccessTTL() time.Duration { return e.config.JWT.AccessTTL }

// RefreshTTL is the lifetime of issued refresh credentials.
func (e *Engine) RefreshTTL() time.Duration { return e.config.JWT.RefreshTTL }

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

// Login authenticates email and password and issues an access/refresh pair
// built from the same identity snapshot.
//
// An unknown email and a wrong password both return exactly
// ErrAuthenticationFailure. Throttled attempts return ErrLoginRateLimited.
// Store failures return an error matching ErrStoreUnavailable.
func (e *Engine) Login(ctx context.Context, email, password string) (*IssueResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, email, password, e.flows.Login)
	switch res.Failure {
	case flows.LoginFailureNone:
	case flows.LoginFailureRateLimited:
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, nil)
		return nil, ErrLoginRateLimited
	case flows.LoginFailureUnknownUser, flows.LoginFailureBadPassword:
		e.metricInc(MetricLoginFailure)
		reason := "unknown_email"
		if res.Failure == flows.LoginFailureBadPassword {
			reason = "bad_password"
		}
		if res.Err != nil && !errors.Is(res.Err, ErrIdentityNotFound) {
			e.logger.Error("stored password hash unusable", zap.String("user_id", res.User.UserID), zap.Error(res.Err))
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, res.User.UserID, ErrAuthenticationFailure, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return nil, ErrAuthenticationFailure
	case flows.LoginFailureStore:
		e.metricInc(MetricStoreError)
		e.logger.Error("credential store lookup failed", zap.Error(res.Err))
		err := fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, nil)
		return nil, err
	default:
		e.logger.Error("credential issuance failed", zap.String("user_id", res.User.UserID), zap.Error(res.Err))
		e.emitAudit(ctx, auditEventLoginFailure, false, res.User.UserID, res.Err, nil)
		return nil, res.Err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, res.User.UserID, nil, nil)

	return &IssueResult{
		UserID:        res.User.UserID,
		Role:          Role(res.User.Role),
		AccessToken:   res.AccessToken,
		AccessClaims:  res.AccessClaims,
		RefreshToken:  res.RefreshToken,
		RefreshClaims: res.RefreshClaims,
	}, nil
}

// Verify is the authorization gate for protected requests. It checks the
// signature and expiry of an access credential and returns the identity the
// credential proves. It never consults the credential store.
//
// Every failure matches ErrUnauthenticated and additionally one of
// ErrTokenMalformed, ErrSignatureInvalid or ErrTokenExpired.
func (e *Engine) Verify(ctx context.Context, token string) (VerifiedIdentity, error) {
	if e == nil || e.jwtManager == nil {
		return VerifiedIdentity{}, ErrEngineNotReady
	}

	res := flows.RunVerify(token, e.flows.Verify)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricVerifyLatency, res.Elapsed)
	}
	if res.Err != nil {
		kindErr := verificationSentinel(res.Failure)
		switch res.Failure {
		case jwt.Expired:
			e.metricInc(MetricVerifyExpired)
		case jwt.SignatureInvalid:
			e.metricInc(MetricVerifySignatureInvalid)
		default:
			e.metricInc(MetricVerifyMalformed)
		}
		e.logger.Debug("access credential rejected",
			zap.Stringer("kind", res.Failure),
			zap.String("ip", clientIPFromContext(ctx)),
			zap.Error(res.Err),
		)
		return VerifiedIdentity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, kindErr)
	}

	e.metricInc(MetricVerifySuccess)
	return VerifiedIdentity{
		userID: res.Claims.UID,
		email:  res.Claims.Email,
		role:   Role(res.Claims.Role),
	}, nil
}

// Refresh exchanges a refresh credential for a new access credential minted
// from the identity as currently stored. The refresh credential is returned
// to the caller unchanged; there is no rotation-on-use.
//
// Every failure matches ErrUnauthenticated. The cause is wrapped as well
// (ErrTokenExpired, ErrIdentityNotFound, ErrStoreUnavailable, ...).
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, refreshToken, e.flows.Refresh)
	if res.Failure != flows.RefreshFailureNone {
		var cause error
		switch res.Failure {
		case flows.RefreshFailureDecode:
			kind, _ := jwt.KindOf(res.Err)
			cause = verificationSentinel(kind)
			e.logger.Debug("refresh credential rejected", zap.Stringer("kind", kind), zap.Error(res.Err))
		case flows.RefreshFailureUserNotFound:
			cause = ErrIdentityNotFound
			e.logger.Info("refresh for deleted identity", zap.String("user_id", res.UserID))
		case flows.RefreshFailureStore:
			e.metricInc(MetricStoreError)
			cause = fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
			e.logger.Error("credential store lookup failed during refresh", zap.String("user_id", res.UserID), zap.Error(res.Err))
		default:
			cause = res.Err
			e.logger.Error("refresh failed", zap.String("user_id", res.UserID), zap.Error(res.Err))
		}
		err := fmt.Errorf("%w: %w", ErrUnauthenticated, cause)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.UserID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, nil, nil)

	return &RefreshResult{
		UserID:       res.User.UserID,
		Role:         Role(res.User.Role),
		AccessToken:  res.AccessToken,
		AccessClaims: res.AccessClaims,
	}, nil
}

// Logout records a logout. It never fails: clearing the caller's credentials
// is the transport's job, and a missing, expired or forged access credential
// must not prevent it. The token is inspected only to attribute the audit event.
func (e *Engine) Logout(ctx context.Context, accessToken string) {
	if e == nil || e.jwtManager == nil {
		return
	}
	res := flows.RunLogout(accessToken, e.flows.Logout)
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, res.UserID, nil, func() map[string]string {
		if res.UserID == "" {
			return nil
		}
		return map[string]string{"verified": fmt.Sprint(res.Verified)}
	})
}

// Register creates an applicant account. Validation failures match
// ErrRegistrationInvalid; an existing email matches ErrAccountExists.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (Identity, error) {
	if e == nil || e.store == nil {
		return Identity{}, ErrEngineNotReady
	}

	res := flows.RunRegister(ctx, flows.RegisterInput{
		FullName: in.FullName,
		Email:    in.Email,
		Password: in.Password,
	}, e.flows.Register)

	switch res.Failure {
	case flows.RegisterFailureNone:
	case flows.RegisterFailureInvalid:
		e.metricInc(MetricRegisterInvalid)
		err := fmt.Errorf("%w: %w", ErrRegistrationInvalid, res.Err)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return Identity{}, err
	case flows.RegisterFailureDuplicate:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrAccountExists, nil)
		return Identity{}, ErrAccountExists
	case flows.RegisterFailureStore:
		e.metricInc(MetricStoreError)
		e.logger.Error("credential store insert failed", zap.Error(res.Err))
		err := fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return Identity{}, err
	default:
		e.logger.Error("registration failed", zap.Error(res.Err))
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", res.Err, nil)
		return Identity{}, res.Err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, res.User.UserID, nil, nil)

	return Identity{
		UserID:   res.User.UserID,
		FullName: res.User.FullName,
		Email:    res.User.Email,
		Role:     Role(res.User.Role),
	}, nil
}

// HashPassword hashes password with the configured algorithm. It is used by
// administrative tooling that provisions accounts outside Register.
func (e *Engine) HashPassword(password string) (string, error) {
	if e == nil || e.passwordHash == nil {
		return "", ErrEngineNotReady
	}
	return e.passwordHash.Hash(password)
}

func verificationSentinel(kind jwt.FailureKind) error {
	switch kind {
	case jwt.Expired:
		return ErrTokenExpired
	case jwt.SignatureInvalid:
		return ErrSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}
