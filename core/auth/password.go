package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned when a candidate password does not meet the
// configured minimum length.
var ErrWeakPassword = errors.New("password does not meet the minimum length requirement")

// HashPassword checks the password against policy and generates a bcrypt
// hash of it. The hash embeds its own salt, so the result is all a caller
// needs to persist.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword compares a candidate password with a stored bcrypt hash.
// A mismatch is not an error: it returns false. bcrypt performs the
// comparison in constant time.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
