package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receipt_worker",
			Name:      "messages_received_total",
			Help:      "Kafka messages pulled by the worker",
		},
		[]string{"topic"},
	)

	ReceiptsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receipt_worker",
			Name:      "receipts_total",
			Help:      "Payment events handled, by outcome (recorded, duplicate)",
		},
		[]string{"outcome"},
	)

	ReceiptRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "receipt_worker",
			Name:      "insert_retries_total",
			Help:      "Receipt inserts retried after a storage error",
		},
	)

	DLQPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receipt_worker",
			Name:      "dlq_total",
			Help:      "Messages sent to DLQ by reason",
		},
		[]string{"reason"},
	)

	ProcessLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "receipt_worker",
			Name:      "process_duration_seconds",
			Help:      "End-to-end processing latency per message",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	InflightJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "receipt_worker",
			Name:      "inflight_jobs",
			Help:      "Number of messages currently being processed (semaphore depth)",
		},
	)
)
