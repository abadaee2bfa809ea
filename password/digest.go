package password

import (
	"crypto/sha256"
	"encoding/hex"
)

// FastDigest returns the hex-encoded SHA-256 digest of value.
//
// It is the deterministic one-way hash used for secrets that are already
// high-entropy and short-lived (reset link tokens, OTPs). Slow salted hashing
// adds nothing for single-use random values and would only prevent equality
// lookup by digest.
func FastDigest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
