package flows

import "github.com/MrEthical07/hireauth/jwt"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Tokens *jwt.Manager
}

// LogoutResult identifies whose credentials were cleared, when that can be
// determined. It never carries an error: logout always succeeds.
type LogoutResult struct {
	UserID   string
	Verified bool
}

// RunLogout attributes a logout to a user. A valid access credential yields
// a verified user id; an expired or otherwise invalid one falls back to the
// unverified subject, which is only used for audit attribution.
func RunLogout(accessToken string, deps LogoutDeps) LogoutResult {
	if accessToken == "" {
		return LogoutResult{}
	}
	if claims, err := deps.Tokens.VerifyAccess(accessToken); err == nil {
		return LogoutResult{UserID: claims.UID, Verified: true}
	}
	if claims, err := jwt.DecodeUnverified(accessToken); err == nil {
		return LogoutResult{UserID: claims.UserID}
	}
	return LogoutResult{}
}
