package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignedFields are the notification fields covered by the signature, in order.
var SignedFields = []string{"order_id", "status", "amount", "txn_ref"}

// Sign returns hex(sha1(secret:v1:v2:...)) over SignedFields read through get.
func Sign(secret string, get func(field string) string) string {
	parts := []string{secret}
	for _, f := range SignedFields {
		parts = append(parts, strings.TrimSpace(get(f)))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether provided matches the signature of the fields.
func Verify(secret, provided string, get func(field string) string) bool {
	if secret == "" || provided == "" {
		return false
	}
	want := Sign(secret, get)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(provided))) == 1
}
