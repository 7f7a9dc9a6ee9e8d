package hireauth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MrEthical07/hireauth/jwt"
)

// Role is the coarse authorization role carried in credentials.
type Role string

const (
	// RoleAdmin is a recruiter/administrator account.
	RoleAdmin Role = "admin"
	// RoleApplicant is a candidate account. Self-registration always yields this role.
	RoleApplicant Role = "applicant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleApplicant
}

// Identity is the credential store's record of a user.
type Identity struct {
	UserID       string
	FullName     string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// CreateIdentityInput carries the fields a store needs to insert an Identity.
// PasswordHash is already hashed; stores never see plaintext.
type CreateIdentityInput struct {
	FullName     string
	Email        string
	Role         Role
	PasswordHash string
}

// CredentialStore is the contract hireauth needs from the user database.
//
// Lookups of absent users must return an error matching [ErrIdentityNotFound];
// inserts of a duplicate email must return an error matching [ErrAccountExists].
// Emails are passed already normalized (trimmed, lower-case).
//
//	Implementations: store/sqlstore (Postgres, SQLite), store/memstore.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (Identity, error)
	GetByID(ctx context.Context, userID string) (Identity, error)
	Create(ctx context.Context, input CreateIdentityInput) (Identity, error)
	UpdateRole(ctx context.Context, userID string, role Role) (Identity, error)
}

// VerifiedIdentity is the caller identity proven by a signature-checked access
// credential. Its fields are unexported so that it can only be produced by
// [Engine.Verify]; a decoded-but-unverified claim set cannot be turned into one.
type VerifiedIdentity struct {
	userID string
	email  string
	role   Role
}

// UserID returns the verified user id.
func (v VerifiedIdentity) UserID() string { return v.userID }

// Email returns the email captured in the access credential.
func (v VerifiedIdentity) Email() string { return v.email }

// Role returns the role captured in the access credential. It may lag a store
// update by up to one access credential lifetime.
func (v VerifiedIdentity) Role() Role { return v.role }

// IsZero reports whether v is the zero value (no identity).
func (v VerifiedIdentity) IsZero() bool { return v.userID == "" }

// MarshalJSON renders the identity for API responses.
func (v VerifiedIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Role   Role   `json:"role"`
	}{v.userID, v.email, v.role})
}

// IssueResult is returned by [Engine.Login].
type IssueResult struct {
	UserID        string
	Role          Role
	AccessToken   string
	AccessClaims  *jwt.AccessClaims
	RefreshToken  string
	RefreshClaims *jwt.RefreshClaims
}

// RefreshResult is returned by [Engine.Refresh]. The refresh credential itself
// is not rotated.
type RefreshResult struct {
	UserID       string
	Role         Role
	AccessToken  string
	AccessClaims *jwt.AccessClaims
}

// RegisterInput is the self-registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// PasswordHashUpdater is optionally implemented by a CredentialStore. When
// present, Login replaces hashes produced with outdated parameters.
type PasswordHashUpdater interface {
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}
