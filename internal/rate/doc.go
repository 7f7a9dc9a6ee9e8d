// Package rate provides the Redis-backed failed-login limiter used by the
// Engine's login flow.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes
// (after the configured namespace):
//   - al:  login per-email (SHA-256 of the normalized address)
//   - ali: login per-IP
//
// # What this package must NOT do
//
//   - Count successful logins or refreshes.
//   - Be imported outside the hireauth module.
package rate
