package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = bcrypt.ErrMismatchedHashAndPassword

// HashPassword returns a salted bcrypt digest of plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports ErrMismatch for a wrong password and any other
// error for a digest that is not bcrypt.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
