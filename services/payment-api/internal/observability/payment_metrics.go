package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_api",
			Name:      "orders_created_total",
			Help:      "Orders minted at the gateway and stored as Pending",
		},
		[]string{"purpose", "currency"},
	)

	OrderCreateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_api",
			Name:      "order_create_failures_total",
			Help:      "Failed order creations by reason",
		},
		[]string{"reason"},
	)

	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_api",
			Name:      "payment_verifications_total",
			Help:      "Payment verification outcomes",
		},
		[]string{"result"},
	)

	GatewayLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "payment_api",
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of create-order calls to the payment gateway",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_api",
			Name:      "events_published_total",
			Help:      "PaymentVerified events handed to the broker",
		},
		[]string{"broker", "outcome"},
	)
)
