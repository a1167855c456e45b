package views

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ContactRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

// CreateOrderRequest takes the amount in major units (e.g. rupees), with at most two decimals.
type CreateOrderRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"500"`
	Currency    string          `json:"currency" binding:"omitempty,len=3" example:"INR"`
	Purpose     string          `json:"purpose" binding:"omitempty,oneof=travel donation" example:"travel"`
	PackageName string          `json:"packageName" binding:"max=200"`
	Traveler    *ContactRequest `json:"traveler"`
	Donor       *ContactRequest `json:"donor"`
}

// VerifyPaymentRequest accepts orderId/paymentId/signature. The razorpay_* names sent by the
// checkout callback are read when the plain name is empty.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"max=64"`
	PaymentID string `json:"paymentId" binding:"max=64"`
	Signature string `json:"signature" binding:"max=256"`

	RazorpayOrderID   string `json:"razorpay_order_id" binding:"max=64"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"max=64"`
	RazorpaySignature string `json:"razorpay_signature" binding:"max=256"`
}

// Resolve returns the order id, payment id and signature, preferring the plain names.
// missing lists the fields that were set under neither name.
func (r VerifyPaymentRequest) Resolve() (orderID, paymentID, signature string, missing []string) {
	orderID = firstNonEmpty(r.OrderID, r.RazorpayOrderID)
	paymentID = firstNonEmpty(r.PaymentID, r.RazorpayPaymentID)
	signature = firstNonEmpty(r.Signature, r.RazorpaySignature)
	if orderID == "" {
		missing = append(missing, "orderId")
	}
	if paymentID == "" {
		missing = append(missing, "paymentId")
	}
	if signature == "" {
		missing = append(missing, "signature")
	}
	return orderID, paymentID, signature, missing
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	if strings.TrimSpace(b) != "" {
		return b
	}
	return ""
}

type VerifyPaymentResponse struct {
	TraceID string `json:"traceId"`
	Status  string `json:"status"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

type OrderResponse struct {
	OrderID       string     `json:"orderId"`
	Purpose       string     `json:"purpose"`
	PackageName   string     `json:"packageName,omitempty"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	PaymentStatus string     `json:"paymentStatus"`
	CreatedAt     time.Time  `json:"createdAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}
