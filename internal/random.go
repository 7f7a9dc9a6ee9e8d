package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MinSecretBytes is the smallest signing secret GenerateSecret will produce.
const MinSecretBytes = 32

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewUserID returns a lexicographically sortable user identifier.
func NewUserID() string {
	return NewUserIDAt(time.Now())
}

// NewUserIDAt returns a user identifier whose timestamp component is t.
func NewUserIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ValidUserID reports whether id is a canonical ULID string.
func ValidUserID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// GenerateSecret returns n random bytes encoded as unpadded base64url, for use
// as a token signing secret.
func GenerateSecret(n int) (string, error) {
	if n < MinSecretBytes {
		return "", errors.New("secret must be at least 32 bytes")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
