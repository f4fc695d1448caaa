package auth

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenBytes = 32

// GenerateToken returns a fresh opaque bearer token: high-entropy random
// bytes, hex-encoded. A token is valid only by lookup against the store;
// it carries no structure and no signature.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
