// Package middleware exposes HTTP middleware built on hireauth.Engine.Verify.
//
// # Guards
//
//   - [Guard]: stateless access credential verification (cookie, then Bearer header).
//   - [RequireRole]: coarse role gate, mounted behind Guard.
//   - [ClientContext]: records client IP and User-Agent for the Engine.
//
// Guard injects the [hireauth.VerifiedIdentity] into the request context;
// handlers read it with [IdentityFromContext] and then apply
// hireauth.RequireOwnership for user-scoped resources.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Make authorization decisions beyond pass/reject from Engine.Verify and role membership.
package middleware
