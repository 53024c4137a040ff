package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// authTokenBytes is the entropy of a generated auth token (64 hex chars).
const authTokenBytes = 32

// GenerateAuthToken returns a new opaque API token value. Tokens gate API
// access, so the value must come from a cryptographically strong source.
func GenerateAuthToken() (string, error) {
	buf := make([]byte, authTokenBytes)
	if _, errRead := rand.Read(buf); errRead != nil {
		return "", fmt.Errorf("security: generate auth token: %w", errRead)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errHash != nil {
		return "", fmt.Errorf("security: hash password: %w", errHash)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
