package embedding

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashString returns the hex-encoded SHA-256 of the text, used as a stable
// cache key component for embedding lookups.
func hashString(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
