package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/hireauth/jwt"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureDecode
	RefreshFailureUserNotFound
	RefreshFailureSubjectMismatch
	RefreshFailureStore
	RefreshFailureIssueAccess
)

// RefreshResult carries either the new access credential or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	UserID       string
	User         UserRecord
	AccessToken  string
	AccessClaims *jwt.AccessClaims
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Tokens       *jwt.Manager
	GetUserByID  func(context.Context, string) (UserRecord, error)
	UserNotFound error
}

// RunRefresh exchanges a refresh credential for a new access credential. The
// identity is re-read from the store so role and email changes are honored.
// The refresh credential is not rotated and no shared state is written, so
// concurrent calls with the same token are independent.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	claims, err := deps.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureDecode, Err: err}
	}

	user, err := deps.GetUserByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, deps.UserNotFound) {
			return RefreshResult{Failure: RefreshFailureUserNotFound, Err: err, UserID: claims.UID}
		}
		return RefreshResult{Failure: RefreshFailureStore, Err: err, UserID: claims.UID}
	}
	if user.UserID != claims.UID {
		return RefreshResult{
			Failure: RefreshFailureSubjectMismatch,
			Err:     fmt.Errorf("store returned user %q for subject %q", user.UserID, claims.UID),
			UserID:  claims.UID,
		}
	}

	access, accessClaims, err := deps.Tokens.SignAccess(user.UserID, user.Email, user.Role)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssueAccess, Err: err, UserID: claims.UID}
	}

	return RefreshResult{
		UserID:       user.UserID,
		User:         user,
		AccessToken:  access,
		AccessClaims: accessClaims,
	}
}
