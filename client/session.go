package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth/jwt"
)

const (
	// DefaultLeadTime is how long before expiry a renewal is attempted.
	DefaultLeadTime = 120 * time.Second
	// DefaultRenewTimeout bounds a single renewal round trip.
	DefaultRenewTimeout = 10 * time.Second
)

var (
	// ErrRenewalInFlight is returned by RenewNow when another renewal of the
	// same session has not finished yet.
	ErrRenewalInFlight = errors.New("renewal already in flight")
	// ErrNotAuthenticated is returned when the session holds no credential.
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrAlreadyAuthenticated is returned by Login on a live session.
	ErrAlreadyAuthenticated = errors.New("session is already authenticated")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
	// ErrRenewalFailed wraps the cause of a renewal that logged the session out.
	ErrRenewalFailed = errors.New("session renewal failed")
)

// State is the scheduler state of a Session.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Session. Zero values take defaults.
type Options struct {
	LeadTime     time.Duration
	RenewTimeout time.Duration
	Clock        Clock
	Logger       *zap.Logger
	// OnStateChange is called after each transition, without the session
	// lock held.
	OnStateChange func(from, to State)
}

// Session owns one access credential and its renewal timer.
//
// All methods are safe for concurrent use.
type Session struct {
	transport Transport
	opts      Options
	clock     Clock
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	token      string
	expiresAt  time.Time
	timer      Stopper
	generation uint64
	inFlight   bool
	closed     bool
	pending    []transition
}

type transition struct {
	from, to State
}

// NewSession returns a logged-out session.
func NewSession(transport Transport, opts Options) *Session {
	if opts.LeadTime <= 0 {
		opts.LeadTime = DefaultLeadTime
	}
	if opts.RenewTimeout <= 0 {
		opts.RenewTimeout = DefaultRenewTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		transport: transport,
		opts:      opts,
		clock:     clock,
		logger:    logger.Named("session"),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the held access token, if any.
func (s *Session) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// ExpiresAt returns the expiry of the held access token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Login authenticates through the transport and arms renewal.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.state != StateLoggedOut:
		s.mu.Unlock()
		return ErrAlreadyAuthenticated
	}
	s.setStateLocked(StateAuthenticating)
	s.unlockAndNotify()

	token, err := s.transport.Login(ctx, email, password)
	var claims jwt.UnverifiedClaims
	if err == nil {
		claims, err = jwt.DecodeUnverified(token)
	}

	s.mu.Lock()
	if s.closed {
		s.unlockAndNotify()
		return ErrClosed
	}
	if s.state != StateAuthenticating {
		s.unlockAndNotify()
		return ErrNotAuthenticated
	}
	if err != nil {
		s.setStateLocked(StateLoggedOut)
		s.unlockAndNotify()
		return err
	}
	s.installLocked(token, claims)
	s.unlockAndNotify()
	return nil
}

// Adopt takes over an access token obtained elsewhere, such as one read from
// a cookie on page load, and arms renewal from its expiry. An already expired
// token schedules an immediate renewal.
func (s *Session) Adopt(token string) error {
	claims, err := jwt.DecodeUnverified(token)
	if err != nil {
		return err
	}
	if claims.Kind != jwt.KindAccess {
		return fmt.Errorf("adopt: unexpected token kind %q", claims.Kind)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrRenewalInFlight
	}
	s.installLocked(token, claims)
	s.unlockAndNotify()
	return nil
}

// RenewNow renews immediately. It returns ErrRenewalInFlight without
// contacting the server when a renewal is already running.
func (s *Session) RenewNow(ctx context.Context) error {
	return s.renew(ctx)
}

// Logout cancels renewal, forgets the credential and tells the server.
// The session is logged out even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	wasIn := s.state != StateLoggedOut
	s.clearLocked()
	s.unlockAndNotify()

	if !wasIn {
		return nil
	}
	return s.transport.Logout(ctx)
}

// Close cancels renewal and makes the session unusable. It does not contact
// the server.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.clearLocked()
	s.unlockAndNotify()
}

func (s *Session) renew(parent context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.inFlight:
		s.mu.Unlock()
		return ErrRenewalInFlight
	case s.state != StateAuthenticated:
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.inFlight = true
	gen := s.generation
	s.setStateLocked(StateRefreshing)
	s.unlockAndNotify()

	ctx, cancel := context.WithTimeout(parent, s.opts.RenewTimeout)
	token, err := s.transport.Refresh(ctx)
	cancel()

	var claims jwt.UnverifiedClaims
	if err == nil {
		claims, err = jwt.DecodeUnverified(token)
	}
	if err == nil && !claims.ExpiresAt.After(s.clock.Now()) {
		err = errors.New("renewed token is already expired")
	}

	s.mu.Lock()
	if s.closed || gen != s.generation || s.state != StateRefreshing {
		// Logged out while the request was running. The in-flight flag was
		// reset by the logout and may now belong to a newer renewal.
		s.unlockAndNotify()
		return ErrNotAuthenticated
	}
	s.inFlight = false
	if err != nil {
		s.clearLocked()
		s.unlockAndNotify()
		s.logger.Warn("renewal failed, logging out", zap.Error(err))
		s.bestEffortLogout(parent)
		return fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}
	s.installLocked(token, claims)
	s.unlockAndNotify()
	s.logger.Debug("access token renewed", zap.Time("expires_at", claims.ExpiresAt))
	return nil
}

func (s *Session) bestEffortLogout(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.opts.RenewTimeout)
	defer cancel()
	if err := s.transport.Logout(ctx); err != nil {
		s.logger.Debug("logout after failed renewal", zap.Error(err))
	}
}

// fire runs on the timer goroutine. A timer from an older generation has
// been superseded and does nothing.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	stale := s.closed || gen != s.generation || s.state != StateAuthenticated
	s.mu.Unlock()
	if stale {
		return
	}

	if err := s.renew(context.Background()); errors.Is(err, ErrRenewalInFlight) {
		s.logger.Debug("scheduled renewal skipped, another is in flight")
	}
}

func (s *Session) installLocked(token string, claims jwt.UnverifiedClaims) {
	s.token = token
	s.expiresAt = claims.ExpiresAt
	s.armLocked()
	s.setStateLocked(StateAuthenticated)
}

func (s *Session) armLocked() {
	s.stopTimerLocked()
	delay := s.expiresAt.Sub(s.clock.Now()) - s.opts.LeadTime
	if delay < 0 {
		delay = 0
	}
	gen := s.generation
	s.timer = s.clock.AfterFunc(delay, func() { s.fire(gen) })
}

// stopTimerLocked cancels the armed timer and invalidates it in case it
// already fired.
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *Session) clearLocked() {
	s.stopTimerLocked()
	s.inFlight = false
	s.token = ""
	s.expiresAt = time.Time{}
	s.setStateLocked(StateLoggedOut)
}

func (s *Session) setStateLocked(to State) {
	if s.state == to {
		return
	}
	s.pending = append(s.pending, transition{from: s.state, to: to})
	s.state = to
}

func (s *Session) unlockAndNotify() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if s.opts.OnStateChange == nil {
		return
	}
	for _, t := range pending {
		s.opts.OnStateChange(t.from, t.to)
	}
}
