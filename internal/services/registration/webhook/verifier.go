// Package webhook verifies and decodes payment processor event deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the hex HMAC-SHA256 signature of payload under secret. It is
// the signature the processor is expected to send for that exact byte
// sequence.
func Sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature authenticates payload under secret.
//
// The payload must be the raw transport bytes as received. Hashing a
// re-serialized form of a parsed body changes key order and whitespace and
// breaks verification, so callers capture the body before any JSON decoding.
// The comparison is constant-time in the digest content.
func Verify(payload []byte, signature string, secret []byte) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || len(secret) == 0 {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
