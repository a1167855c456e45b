package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer computes and checks the gateway's payment signature:
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) mac(orderID, paymentID string) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(orderID + "|" + paymentID))
	return m.Sum(nil)
}

// Sign returns the hex encoded signature the gateway would issue for the pair.
func (s *Signer) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(s.mac(orderID, paymentID))
}

// Verify reports whether signature matches the pair. The comparison runs in constant time
// over the decoded bytes; malformed hex never matches.
func (s *Signer) Verify(orderID, paymentID, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(s.mac(orderID, paymentID), got)
}

// String keeps the secret out of logs and fmt output.
func (s *Signer) String() string {
	return "razorpay.Signer{secret:[redacted]}"
}
