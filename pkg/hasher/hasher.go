package hasher

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords one way and verifies candidates against a stored hash.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a Hasher using bcrypt. A cost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Verify(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
