package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SignHMAC computes HMAC-SHA256(secret, message) and returns it
// base64url-encoded without padding.
func SignHMAC(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC reports whether signature is a valid base64url-encoded
// HMAC-SHA256 of message under secret. Comparison is constant-time.
func VerifyHMAC(secret []byte, message, signature string) bool {
	got, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hmac.Equal(got, mac.Sum(nil))
}

// HashIdentifier derives a short keyed hash of a user-supplied identifier
// (e.g. an email address) for use in rate-limit keys. The HMAC prevents
// offline precomputation of identifier-to-hash mappings, and truncation
// keeps keys compact; raw identifiers never appear in keys or logs.
func HashIdentifier(secret []byte, identifier string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(identifier))))
	return hex.EncodeToString(mac.Sum(nil))[:8]
}
