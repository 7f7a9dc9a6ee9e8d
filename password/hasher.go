package password

import "errors"

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password is empty")
	// ErrPasswordTooLong is returned when the password exceeds the algorithm's input limit.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrInvalidHash is returned when a stored hash cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")
)

// Algorithm names accepted by New.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

type scheme interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) (bool, error)
	handles(encoded string) bool
}

// Config selects the algorithm used for new hashes.
type Config struct {
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Config
}

// Hasher produces hashes with one algorithm and verifies hashes of either
// supported format, so stores may hold a mix of bcrypt and argon2id rows.
type Hasher struct {
	primary scheme
	schemes []scheme
	dummy   string
}

// New builds a Hasher for cfg.
func New(cfg Config) (*Hasher, error) {
	bc, err := NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	h := &Hasher{schemes: []scheme{bc}}

	switch cfg.Algorithm {
	case "", AlgorithmBcrypt:
		h.primary = bc
		if cfg.Argon2.Memory != 0 {
			a2, err := NewArgon2(cfg.Argon2)
			if err != nil {
				return nil, err
			}
			h.schemes = append(h.schemes, a2)
		} else {
			h.schemes = append(h.schemes, verifyOnlyArgon2{})
		}
	case AlgorithmArgon2id:
		a2, err := NewArgon2(cfg.Argon2)
		if err != nil {
			return nil, err
		}
		h.primary = a2
		h.schemes = append(h.schemes, a2)
	default:
		return nil, errors.New("unsupported password algorithm")
	}

	// Compared against when the account does not exist so that unknown
	// emails cost the same as wrong passwords.
	dummy, err := h.primary.Hash("hireauth-timing-equalizer")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

// Hash hashes password with the primary algorithm.
func (h *Hasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

// Verify checks password against encoded, selecting the algorithm from the hash format.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	s := h.schemeFor(encoded)
	if s == nil {
		return false, ErrInvalidHash
	}
	return s.Verify(password, encoded)
}

// NeedsRehash reports whether encoded should be replaced by a primary-algorithm hash.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	if !h.primary.handles(encoded) {
		return true, nil
	}
	return h.primary.NeedsRehash(encoded)
}

// Equalize burns the same work as a real verification. It always fails.
func (h *Hasher) Equalize(password string) {
	_, _ = h.primary.Verify(password, h.dummy)
}

func (h *Hasher) schemeFor(encoded string) scheme {
	for _, s := range h.schemes {
		if s.handles(encoded) {
			return s
		}
	}
	return nil
}

// verifyOnlyArgon2 verifies argon2id hashes using the parameters embedded in them.
type verifyOnlyArgon2 struct{}

func (verifyOnlyArgon2) Hash(string) (string, error) { return "", errors.New("argon2id hashing not configured") }
func (verifyOnlyArgon2) Verify(password, encoded string) (bool, error) {
	return (&Argon2{}).Verify(password, encoded)
}
func (verifyOnlyArgon2) NeedsRehash(string) (bool, error) { return true, nil }
func (verifyOnlyArgon2) handles(encoded string) bool     { return (&Argon2{}).handles(encoded) }
