// Package crypto provides password hashing and verification.
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by ComparePasswordHash when the password
// does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// HashPasswordAsBcrypt generates a salted bcrypt hash of password at the given cost.
func HashPasswordAsBcrypt(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// ComparePasswordHash reports ErrPasswordMismatch for a wrong password and
// any other error when the hash itself cannot be checked.
func ComparePasswordHash(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
