// Package hireauth implements the authenticated session lifecycle of the
// recruiting platform: password login issuing a short-lived access credential
// and a long-lived refresh credential, stateless verification of access
// credentials on every protected request, refresh of access credentials, and
// unconditional logout.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. There is no server-side session table; validity is decided
// entirely by signature and expiry.
//
// # Architecture boundaries
//
// hireauth is the public surface. It exposes [Engine], [Builder], [Config],
// [VerifiedIdentity] and the [CredentialStore] contract. Flow orchestration,
// rate limiting and audit dispatch live under internal/.
//
// # What this package must NOT do
//
//   - Trust a client-supplied user id. Only [Engine.Verify] produces a [VerifiedIdentity].
//   - Decide resource ownership. Callers do that with [RequireOwnership] after Verify.
//   - Keep revocation lists or per-device session state.
package hireauth
