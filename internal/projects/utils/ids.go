package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID generates a new hex-based ID with a prefix (used for versions
// attached to a project). Format: "prefix_hexstring" (e.g., "ver_a1b2c3...").
func NewID(prefix string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}
