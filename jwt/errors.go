package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// FailureKind classifies why a credential failed verification.
type FailureKind int

const (
	// Malformed means the token is structurally invalid or carries an unusable claim set.
	Malformed FailureKind = iota + 1
	// SignatureInvalid means the signature does not match the configured secret.
	SignatureInvalid
	// Expired means the signature is valid but the time window has lapsed.
	Expired
)

func (k FailureKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case SignatureInvalid:
		return "signature_invalid"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// VerificationError is returned by every verify path of [Manager].
type VerificationError struct {
	Kind FailureKind
	Err  error
}

func newVerificationError(kind FailureKind, err error) *VerificationError {
	return &VerificationError{Kind: kind, Err: err}
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return "token " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *VerificationError) Unwrap() error { return e.Err }

// KindOf reports the FailureKind carried by err, if any.
func KindOf(err error) (FailureKind, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}

func classify(err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newVerificationError(Malformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return newVerificationError(SignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newVerificationError(Expired, err)
	default:
		return newVerificationError(Malformed, err)
	}
}
