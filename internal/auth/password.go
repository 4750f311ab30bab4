package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher builds a Hasher. A cost outside bcrypt's range falls back to the
// library default.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("stationhub:unknown-user"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: init hasher: %w", err)
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A malformed hash is
// returned as an error so callers can log it.
func (h *Hasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// CompareDummy burns the same work as a real comparison so that unknown
// usernames are not distinguishable by response time.
func (h *Hasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
