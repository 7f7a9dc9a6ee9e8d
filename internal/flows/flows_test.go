package flows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/hireauth/jwt"
)

var errExists = errors.New("exists")

func registerDeps(created *[]string) RegisterDeps {
	return RegisterDeps{
		MinPasswordLength: 8,
		MaxPasswordBytes:  72,
		DefaultRole:       "applicant",
		HashPassword:      func(p string) (string, error) { return "hash:" + p, nil },
		CreateUser: func(_ context.Context, fullName, email, role, hash string) (UserRecord, error) {
			if email == "taken@b.com" {
				return UserRecord{}, errExists
			}
			*created = append(*created, email)
			return UserRecord{UserID: "u1", FullName: fullName, Email: email, Role: role, PasswordHash: hash}, nil
		},
		AccountExists: errExists,
	}
}

func TestRunRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"blank name", RegisterInput{FullName: "   ", Email: "a@b.com", Password: "long-enough"}},
		{"long name", RegisterInput{FullName: strings.Repeat("é", MaxFullNameRunes+1), Email: "a@b.com", Password: "long-enough"}},
		{"display-name email", RegisterInput{FullName: "A", Email: "Ann <a@b.com>", Password: "long-enough"}},
		{"bad email", RegisterInput{FullName: "A", Email: "a@", Password: "long-enough"}},
		{"short password", RegisterInput{FullName: "A", Email: "a@b.com", Password: "seven77"}},
		{"too many bytes", RegisterInput{FullName: "A", Email: "a@b.com", Password: strings.Repeat("x", 73)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var created []string
			res := RunRegister(context.Background(), tc.in, registerDeps(&created))
			if res.Failure != RegisterFailureInvalid {
				t.Fatalf("expected invalid, got %v (%v)", res.Failure, res.Err)
			}
			if len(created) != 0 {
				t.Fatal("store must not be called for invalid input")
			}
		})
	}
}

func TestRunRegisterNormalizesAndAssignsRole(t *testing.T) {
	var created []string
	res := RunRegister(context.Background(), RegisterInput{
		FullName: "  Ada Lovelace ",
		Email:    " Ada@B.com ",
		Password: "analytical",
	}, registerDeps(&created))
	if res.Failure != RegisterFailureNone {
		t.Fatalf("unexpected failure %v: %v", res.Failure, res.Err)
	}
	if res.User.Email != "ada@b.com" || res.User.FullName != "Ada Lovelace" || res.User.Role != "applicant" {
		t.Fatalf("unexpected record %+v", res.User)
	}
	if res.User.PasswordHash != "hash:analytical" {
		t.Fatal("password was not hashed before storage")
	}
}

func TestRunRegisterEmailMatchesHTTPRule(t *testing.T) {
	for _, email := range []string{"first.last+jobs@example.co.uk", "Ann <ann@b.com>", "ann@", "ann.b.com"} {
		var created []string
		res := RunRegister(context.Background(), RegisterInput{
			FullName: "Ann", Email: email, Password: "long-enough",
		}, registerDeps(&created))

		wantValid := validate.Var(NormalizeEmail(email), emailRule) == nil
		if gotValid := res.Failure == RegisterFailureNone; gotValid != wantValid {
			t.Fatalf("email %q: accepted=%v, HTTP rule accepts=%v", email, gotValid, wantValid)
		}
	}
	if validate.Var("ann <ann@b.com>", emailRule) == nil {
		t.Fatal("display-name form must be rejected")
	}
}

func TestRunRegisterDuplicate(t *testing.T) {
	var created []string
	res := RunRegister(context.Background(), RegisterInput{
		FullName: "T", Email: "taken@b.com", Password: "long-enough",
	}, registerDeps(&created))
	if res.Failure != RegisterFailureDuplicate {
		t.Fatalf("expected duplicate, got %v", res.Failure)
	}
}

func TestRunLogoutAttribution(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, err := jwt.NewManager(jwt.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	token, _, err := m.SignAccess("u1", "a@b.com", "applicant")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	deps := LogoutDeps{Tokens: m}

	if res := RunLogout(token, deps); !res.Verified || res.UserID != "u1" {
		t.Fatalf("expected verified attribution, got %+v", res)
	}

	now = now.Add(time.Hour)
	if res := RunLogout(token, deps); res.Verified || res.UserID != "u1" {
		t.Fatalf("expected unverified attribution for expired token, got %+v", res)
	}

	if res := RunLogout("garbage", deps); res.UserID != "" {
		t.Fatalf("expected no attribution, got %+v", res)
	}
	if res := RunLogout("", deps); res.UserID != "" {
		t.Fatalf("expected no attribution, got %+v", res)
	}
}
