package accesswatch

import (
	"crypto/md5"
	"encoding/hex"
)

// Cache keys. User agents and identity parts are hashed to bound key size.
func addressKey(ip string) string {
	return "ip-" + ip
}

func userAgentKey(ua string) string {
	return "ua-" + md5hex(ua)
}

func identityKey(ip, ua string) string {
	return "identity-" + md5hex(ip) + "-" + md5hex(ua)
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
