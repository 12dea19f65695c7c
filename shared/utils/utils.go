package utils

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrIllegalCharacters rejects names containing anything but letters and digits.
var ErrIllegalCharacters = errors.New("illegal characters in name")

// TestTableSuffix is appended to a table name when a request runs in test mode.
const TestTableSuffix = "Test"

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ContainsSpecialCharacters reports whether s holds any rune that is not a
// letter or a digit.
func ContainsSpecialCharacters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// NormalizeName lower-cases a user or account name and rejects empty names
// or names with special characters.
func NormalizeName(name string) (string, error) {
	if name == "" || ContainsSpecialCharacters(name) {
		return "", ErrIllegalCharacters
	}
	return strings.ToLower(name), nil
}

// TableName selects the live table or its test twin.
func TableName(base string, isTest bool) string {
	if isTest {
		return base + TestTableSuffix
	}
	return base
}
