package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const minPasswordLength = 12

// GenerateSecurePassword creates a random URL-safe password of the given
// length. Lengths below 12 are raised to 12.
func GenerateSecurePassword(length int) (string, error) {
	if length < minPasswordLength {
		length = minPasswordLength
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	password := base64.RawURLEncoding.EncodeToString(b)
	return password[:length], nil
}
