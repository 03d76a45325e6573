package robots

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashUserAgent returns the lowercase hex MD5 digest of ua, the key the
// reference database publishes User-Agents under. Hashing is case-sensitive.
func HashUserAgent(ua string) string {
	sum := md5.Sum([]byte(ua))
	return hex.EncodeToString(sum[:])
}

func normalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
