package utils

import (
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

func HashPassword(s string) ([]byte, error) {
	if len(s) < minPasswordLength {
		return nil, ValidationError("password must be at least %d characters", minPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

// ComparePassword returns bcrypt.ErrMismatchedHashAndPassword for a wrong password.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
