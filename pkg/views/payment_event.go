package views

import (
	"time"

	"github.com/tripfund/payment-backend/pkg"
)

const EventPaymentVerified = "PaymentVerified"

// PaymentEvent is published once per order when its payment is verified.
type PaymentEvent struct {
	EventID   string           `json:"eventId" validate:"required,uuid"`
	EventType string           `json:"eventType" validate:"required,eq=PaymentVerified"`
	OrderID   string           `json:"orderId" validate:"required"`
	PaymentID string           `json:"paymentId" validate:"required"`
	Amount    int64            `json:"amount" validate:"gt=0"`
	Currency  string           `json:"currency" validate:"required,len=3"`
	Purpose   pkg.OrderPurpose `json:"purpose" validate:"required,oneof=travel donation"`
	PaidAt    time.Time        `json:"paidAt" validate:"required"`
	TraceID   string           `json:"traceId,omitempty"`
}
