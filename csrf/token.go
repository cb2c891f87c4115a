package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// newToken draws n cryptographically secure random bytes and hex-encodes
// them (two lowercase hex characters per byte). A failing randomness source
// is returned as an error; callers must treat it as fatal and never fall
// back to a weaker source.
func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// tokenEqual reports whether a and b hold the same token. A length mismatch
// is rejected up front; equal-length contents are compared in constant time.
func tokenEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
