// Package auth holds the credential primitives: PBKDF2 password hashing
// with per-user salts and opaque session-token generation.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 100_000
	keyLength  = 64
)

// GenerateSalt returns a fresh cryptographically random hex-encoded salt.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives a digest for password with a freshly generated
// salt and returns both, ready to be stored.
func HashPassword(password string) (digest, salt string, err error) {
	salt, err = GenerateSalt()
	if err != nil {
		return "", "", err
	}
	return HashPasswordWithSalt(password, salt), salt, nil
}

// HashPasswordWithSalt is deterministic for a given (password, salt) pair.
func HashPasswordWithSalt(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New)
	return hex.EncodeToString(key)
}

// VerifyPassword re-derives the digest for password under the stored salt
// and compares it to the stored digest in constant time.
func VerifyPassword(password, storedDigest, storedSalt string) bool {
	derived := HashPasswordWithSalt(password, storedSalt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedDigest)) == 1
}
