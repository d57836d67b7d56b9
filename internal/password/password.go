// Package password owns credential hashing and the configurable
// complexity predicate.
package password

import (
	"errors"

	"backend/internal/apperror"

	"golang.org/x/crypto/bcrypt"
)

// Policy mirrors the two password-strength settings exposed through
// configuration. When Active is false every password passes.
type Policy struct {
	Active            bool
	MinimumCharacters int
}

// IsComplex reports whether the plaintext satisfies the configured policy.
// Length is the only built-in rule; character-class checks would be layered
// on top of this predicate, not hard-coded here.
func IsComplex(plaintext string, policy Policy) bool {
	if !policy.Active {
		return true
	}
	min := policy.MinimumCharacters
	if min < 1 {
		min = 1
	}
	return len(plaintext) >= min
}

// Hash produces a salted bcrypt hash. Two calls with the same input yield
// different hashes, so callers compare with Verify, never by equality.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares a plaintext against a stored hash. A mismatch is a normal
// false result; an unparseable stored hash is a CorruptCredentialError.
func Verify(storedHash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, apperror.CorruptCredential("stored credential hash is not a valid bcrypt hash", err)
}
