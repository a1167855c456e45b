package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigner_SignIsDeterministic(t *testing.T) {
	s := NewSigner("test_secret")
	for i := 0; i < 20; i++ {
		orderID := fmt.Sprintf("order_%d", i)
		paymentID := fmt.Sprintf("pay_%d", i)
		assert.Equal(t, s.Sign(orderID, paymentID), s.Sign(orderID, paymentID))
	}
}

func TestSigner_SignMatchesCanonicalMessage(t *testing.T) {
	m := hmac.New(sha256.New, []byte("test_secret"))
	m.Write([]byte("order_abc|pay_xyz"))
	want := hex.EncodeToString(m.Sum(nil))

	assert.Equal(t, want, NewSigner("test_secret").Sign("order_abc", "pay_xyz"))
}

func TestSigner_Verify(t *testing.T) {
	s := NewSigner("test_secret")
	sig := s.Sign("order_abc", "pay_xyz")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "order_abc", "pay_xyz", sig, true},
		{"uppercase hex", "order_abc", "pay_xyz", toUpper(sig), true},
		{"other payment", "order_abc", "pay_other", sig, false},
		{"other order", "order_other", "pay_xyz", sig, false},
		{"empty", "order_abc", "pay_xyz", "", false},
		{"malformed hex", "order_abc", "pay_xyz", "zz" + sig[2:], false},
		{"truncated", "order_abc", "pay_xyz", sig[:32], false},
		{"separator not ambiguous", "order_abc|pay", "xyz", s.Sign("order_abc", "pay|xyz"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Verify(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestSigner_VerifyRejectsEverySingleBitFlip(t *testing.T) {
	s := NewSigner("test_secret")
	raw, _ := hex.DecodeString(s.Sign("order_abc", "pay_xyz"))

	for i := 0; i < len(raw)*8; i++ {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, s.Verify("order_abc", "pay_xyz", hex.EncodeToString(flipped)), "bit %d", i)
	}
}

func TestSigner_DifferentSecretsDisagree(t *testing.T) {
	a := NewSigner("secret_a")
	b := NewSigner("secret_b")
	assert.False(t, b.Verify("order_abc", "pay_xyz", a.Sign("order_abc", "pay_xyz")))
}

func TestSigner_StringRedactsSecret(t *testing.T) {
	s := NewSigner("super_secret_value")
	assert.NotContains(t, fmt.Sprintf("%v", s), "super_secret_value")
	assert.NotContains(t, fmt.Sprintf("%s", s), "super_secret_value")
}

func toUpper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
