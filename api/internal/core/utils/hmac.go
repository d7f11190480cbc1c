package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Fingerprint returns a keyed SHA-256 digest of an exported report container.
// The audit log stores this instead of the container so a leaked log cannot be
// used to brute-force the report password offline.
func Fingerprint(key []byte, container string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(container))
	return hex.EncodeToString(mac.Sum(nil))
}

// MatchFingerprint recomputes the fingerprint and compares it in constant time
// to prevent timing attacks.
func MatchFingerprint(key []byte, container string, fingerprint string) bool {
	provided, err := hex.DecodeString(fingerprint)
	if err != nil {
		return false
	}
	expected, _ := hex.DecodeString(Fingerprint(key, container))
	return subtle.ConstantTimeCompare(expected, provided) == 1
}
