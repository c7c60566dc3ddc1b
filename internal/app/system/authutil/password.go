// Package authutil handles password hashing and validation for the
// password auth method.
package authutil

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 10

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordRules describes the accepted password shape for display.
func PasswordRules() string {
	return "At least 10 characters, including a letter and a digit."
}

// ValidatePassword enforces the rules PasswordRules describes.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("password must be at least 10 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must include a letter and a digit")
	}
	return nil
}
