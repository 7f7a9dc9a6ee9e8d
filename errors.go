package hireauth

import "errors"

var (
	// ErrAuthenticationFailure is returned by Login for an unknown email or a wrong
	// password. The two causes are deliberately indistinguishable.
	ErrAuthenticationFailure = errors.New("invalid credentials")
	// ErrUnauthenticated is returned by Verify and Refresh for any credential that
	// does not prove a live identity. Internal causes are wrapped for logging.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenMalformed is an exported constant or variable used by the authentication engine.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is an exported constant or variable used by the authentication engine.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrIdentityNotFound means a refresh credential references a user that no longer exists.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrConfiguration is returned by Build when required configuration, such as the
	// signing secret, is missing. It is fatal and must never be retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrLoginRateLimited is an exported constant or variable used by the authentication engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRegistrationInvalid is an exported constant or variable used by the authentication engine.
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrAccountExists is an exported constant or variable used by the authentication engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrForbidden is returned by RequireOwnership when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable wraps credential store failures other than not-found.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
