package flows

import (
	"time"

	"github.com/MrEthical07/hireauth/jwt"
)

// VerifyResult returns either claims or the classified codec failure.
type VerifyResult struct {
	Failure jwt.FailureKind
	Err     error
	Claims  *jwt.AccessClaims
	Elapsed time.Duration
}

// VerifyDeps captures access-token verification dependencies.
type VerifyDeps struct {
	Tokens *jwt.Manager
	// Since is used to time verification; nil disables timing.
	Since func(time.Time) time.Duration
	Now   func() time.Time
}

// RunVerify checks an access credential. It touches no store: verification is
// a function of the token, the secret and the clock.
func RunVerify(tokenStr string, deps VerifyDeps) VerifyResult {
	var start time.Time
	if deps.Since != nil {
		start = deps.Now()
	}
	claims, err := deps.Tokens.VerifyAccess(tokenStr)
	var elapsed time.Duration
	if deps.Since != nil {
		elapsed = deps.Since(start)
	}
	if err != nil {
		kind, ok := jwt.KindOf(err)
		if !ok {
			kind = jwt.Malformed
		}
		return VerifyResult{Failure: kind, Err: err, Elapsed: elapsed}
	}
	return VerifyResult{Claims: claims, Elapsed: elapsed}
}
