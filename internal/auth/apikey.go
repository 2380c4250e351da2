package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	keyBytes      = 32
	previewLength = 8
)

// GenerateKey returns a new random API key.
func GenerateKey() (string, error) {
	return randomToken(keyBytes)
}

// HashKey returns the hex SHA-256 of key, the form keys are stored in.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Preview returns the first characters of key followed by an ellipsis.
func Preview(key string) string {
	if len(key) <= previewLength {
		return key + "..."
	}

	return key[:previewLength] + "..."
}
