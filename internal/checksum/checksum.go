// Package checksum computes the content digests used for If-Match checks and
// for skipping unchanged vault files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether data hashes to want, ignoring hex case. An empty
// want always matches.
func Match(data []byte, want string) bool {
	return want == "" || strings.EqualFold(Sum(data), want)
}
