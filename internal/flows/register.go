package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// RegisterFailureKind classifies registration failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureInvalid
	RegisterFailureDuplicate
	RegisterFailureHash
	RegisterFailureStore
)

// MaxFullNameRunes bounds the stored display name.
const MaxFullNameRunes = 200

// emailRule is the same rule the HTTP layer applies to the request body.
const emailRule = "required,email"

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the flow-local registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// RegisterResult carries the created record or failure metadata.
type RegisterResult struct {
	Failure RegisterFailureKind
	Err     error
	User    UserRecord
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	MinPasswordLength int
	MaxPasswordBytes  int
	DefaultRole       string

	HashPassword  func(string) (string, error)
	CreateUser    func(ctx context.Context, fullName, email, role, hash string) (UserRecord, error)
	AccountExists error
}

// RunRegister validates input, hashes the password and inserts the record
// with the default role.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) RegisterResult {
	fullName := strings.TrimSpace(in.FullName)
	email := NormalizeEmail(in.Email)

	if err := validateRegistration(fullName, email, in.Password, deps); err != nil {
		return RegisterResult{Failure: RegisterFailureInvalid, Err: err}
	}

	hash, err := deps.HashPassword(in.Password)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	user, err := deps.CreateUser(ctx, fullName, email, deps.DefaultRole, hash)
	if err != nil {
		if errors.Is(err, deps.AccountExists) {
			return RegisterResult{Failure: RegisterFailureDuplicate, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureStore, Err: err}
	}
	return RegisterResult{User: user}
}

func validateRegistration(fullName, email, password string, deps RegisterDeps) error {
	if fullName == "" {
		return errors.New("full name is required")
	}
	if utf8.RuneCountInString(fullName) > MaxFullNameRunes {
		return fmt.Errorf("full name exceeds %d characters", MaxFullNameRunes)
	}
	if email == "" {
		return errors.New("email is required")
	}
	if err := validate.Var(email, emailRule); err != nil {
		return errors.New("email is invalid")
	}
	if utf8.RuneCountInString(password) < deps.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", deps.MinPasswordLength)
	}
	if deps.MaxPasswordBytes > 0 && len(password) > deps.MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", deps.MaxPasswordBytes)
	}
	return nil
}
