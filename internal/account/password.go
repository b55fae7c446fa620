package account

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Strength rates how hard a password is to guess
type Strength string

const (
	Strong   Strength = "Strong"
	Moderate Strength = "Moderate"
	Weak     Strength = "Weak"

	// MinPasswordLength is the length a strong password needs
	MinPasswordLength = 8

	apiTokenBytes = 32
	specialChars  = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	ErrPasswordsDoNotMatch = errors.New("the passwords provided do not match")
	ErrPasswordTooWeak     = errors.New(
		"the password is too weak, mix letters of both cases and digits",
	)
	ErrPasswordEmpty = errors.New("password empty")
)

// RateStrength classifies a password. Strong passwords have at least
// MinPasswordLength characters and mix upper case, lower case, digits and
// special characters. Moderate ones are long enough, mix cases, or contain
// a digit. Anything else is Weak
func RateStrength(password string) Strength {
	long := utf8.RuneCountInString(password) >= MinPasswordLength
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case long && upper && lower && digit && special:
		return Strong
	case long || (upper && lower) || digit:
		return Moderate
	default:
		return Weak
	}
}

// CheckNewPassword verifies that a replacement password was typed twice
// and is not Weak
func CheckNewPassword(password, repeat string) error {
	if password != repeat {
		return ErrPasswordsDoNotMatch
	}
	if RateStrength(password) == Weak {
		return ErrPasswordTooWeak
	}
	return nil
}

// HashPassword derives the bcrypt hash stored for a password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	hash, err := bcrypt.GenerateFromPassword(
		[]byte(password), bcrypt.DefaultCost,
	)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NewAPIToken returns a random token that authenticates API requests
func NewAPIToken() (string, error) {
	buf := make([]byte, apiTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
