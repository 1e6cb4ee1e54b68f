package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 200_000
	pbkdf2SaltBytes  = 16
	pbkdf2KeyBytes   = 32
)

// HashPassword derives a PBKDF2-SHA256 key from password with a fresh
// random salt and returns base64(salt || key) for storage.
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyBytes, sha256.New)

	return base64.StdEncoding.EncodeToString(append(salt, key...)), nil
}

// VerifyPassword reports whether password matches the stored hash. A
// malformed stored value never matches.
func VerifyPassword(password, stored string) bool {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) != pbkdf2SaltBytes+pbkdf2KeyBytes {
		return false
	}

	salt, want := raw[:pbkdf2SaltBytes], raw[pbkdf2SaltBytes:]
	got := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyBytes, sha256.New)

	return subtle.ConstantTimeCompare(got, want) == 1
}
