// Package password hashes and verifies account passwords.
//
// New hashes use bcrypt by default or Argon2id (PHC string format) when
// configured. Verification selects the algorithm from the stored hash, so a
// store can hold both formats. Every comparison is constant-time.
//
// Password policy (minimum length) is enforced by the registration flow, not here.
package password
