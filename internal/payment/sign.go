package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the confirmation signature the gateway sends back:
// hex(HMAC-SHA256(secret, intentID|paymentID)).
func Sign(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the expected one in
// constant time.
func Verify(secret, intentID, paymentID, signature string) bool {
	expected := Sign(secret, intentID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
