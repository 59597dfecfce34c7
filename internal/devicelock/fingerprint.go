package devicelock

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the device identity presented by a request. Two
// requests from the same browser on the same network address produce the
// same value.
func Fingerprint(userAgent, ip string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + ip))
	return hex.EncodeToString(sum[:])
}
