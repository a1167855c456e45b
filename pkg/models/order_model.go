package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/views"
)

// Contact is the traveler or donor attached to an order.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Order maps to table `orders`
type Order struct {
	ID            int64
	OrderID       string
	Purpose       pkg.OrderPurpose
	PackageName   string
	Amount        int64 // minor units
	Currency      string
	Contact       Contact
	PaymentStatus pkg.PaymentStatus
	PaymentID     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time

	// EventPublishedAt is set once PaymentVerified has been handed to the broker.
	EventPublishedAt *time.Time
}

func (o Order) IsPaid() bool {
	return o.PaymentStatus == pkg.PaymentStatusPaid
}

func (o Order) ToPaymentEvent(paymentID string, paidAt time.Time, traceID string) views.PaymentEvent {
	return views.PaymentEvent{
		EventID:   uuid.New().String(),
		EventType: views.EventPaymentVerified,
		OrderID:   o.OrderID,
		PaymentID: paymentID,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Purpose:   o.Purpose,
		PaidAt:    paidAt.UTC(),
		TraceID:   traceID,
	}
}

// PaymentReceipt maps to table `payment_receipts`
type PaymentReceipt struct {
	ID         uuid.UUID
	OrderID    string
	PaymentID  string
	Amount     int64
	Currency   string
	Purpose    pkg.OrderPurpose
	PaidAt     time.Time
	RecordedAt time.Time
}

func ReceiptFromEvent(e views.PaymentEvent) PaymentReceipt {
	return PaymentReceipt{
		ID:        uuid.New(),
		OrderID:   e.OrderID,
		PaymentID: e.PaymentID,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Purpose:   e.Purpose,
		PaidAt:    e.PaidAt,
	}
}
