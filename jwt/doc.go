// Package jwt signs and verifies the two credential kinds used by hireauth:
// short-lived access credentials and long-lived refresh credentials, both as
// HS256 JWTs carrying a "typ" claim so neither can stand in for the other.
//
// Verification failures are classified as Malformed, SignatureInvalid or
// Expired, in that order of precedence. DecodeUnverified exposes claims without
// a signature check for client-side scheduling only.
package jwt
