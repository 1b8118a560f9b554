// Package password provides one-way password hashing for local accounts.
package password

import "golang.org/x/crypto/bcrypt"

const cost = 12

// Hash returns a salted bcrypt digest of the plaintext. Each call produces a
// different digest for the same input.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. A malformed digest
// verifies as false, never as an error.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
