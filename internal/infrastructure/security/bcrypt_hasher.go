// Package security implements the credential primitives behind the core
// ports: bcrypt password hashing and HS256 identity tokens.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher hashes passwords with a per-call random salt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.InvalidArgument("password must be provided")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.InvalidArgument("password must be at most 72 bytes")
		}
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hashed. bcrypt compares the
// derived keys in constant time.
func (h *BcryptHasher) Verify(plaintext, hashed string) (bool, error) {
	if plaintext == "" || hashed == "" {
		return false, domain.InvalidArgument("password and hash must be provided")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, domain.InvalidArgument("malformed password hash: %v", err)
	}
}
