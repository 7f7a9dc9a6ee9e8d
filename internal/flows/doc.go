// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunVerify, RunRefresh, RunLogout, RunRegister)
// accepts a typed dependency struct and returns a result carrying a failure
// kind instead of a host-level error. The root package maps kinds to its
// exported sentinels, records metrics and emits audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the credential store, JWT manager,
// password hasher and rate limiter. They do NOT own any of these resources;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import hireauth (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency hooks.
package flows
