package pkg

const (
	HeaderTraceId        string = "X-Trace-Id"
	HeaderRequestId      string = "X-Request-Id"
	HeaderIdempotencyKey string = "Idempotency-Key"
)

const (
	TraceId        string = "trace_id"
	RequestId      string = "request_id"
	IdempotencyKey string = "idempotency_key"
	OrderId        string = "order_id"
	PaymentId      string = "payment_id"
)

// PaymentStatus is the ledger state of an order. Pending -> Paid is the only valid transition.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// OrderPurpose tells what the customer is paying for.
type OrderPurpose string

const (
	OrderPurposeTravel   OrderPurpose = "travel"
	OrderPurposeDonation OrderPurpose = "donation"
)
