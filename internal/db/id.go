package db

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID creates a unique entity ID in prefix-xxxxxxxxxx format (10-char
// hex). Collision probability is negligible at board-engine scale; callers
// that need certainty check the unique primary key on insert.
func NewID(prefix string) (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("db: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b), nil
}
