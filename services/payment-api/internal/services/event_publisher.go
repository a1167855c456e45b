package services

import (
	"context"

	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/payment-api/internal/observability"
	"go.uber.org/zap"
)

// EventPublisher emits PaymentVerified events. Publish is called only by the request that won the
// Pending to Paid transition, so each order produces at most one event.
type EventPublisher interface {
	PublishPaymentVerified(ctx context.Context, event views.PaymentEvent) error
	Close()
}

type NoopEventPublisher struct {
	logger *zap.Logger
}

// NewNoopEventPublisher is used when EVENTS_BROKER=none.
func NewNoopEventPublisher(logger *zap.Logger) EventPublisher {
	return &NoopEventPublisher{logger: logger}
}

func (n *NoopEventPublisher) PublishPaymentVerified(_ context.Context, event views.PaymentEvent) error {
	n.logger.Debug("payment_event_dropped_no_broker", zap.String(pkg.OrderId, event.OrderID))
	observability.EventsPublished.WithLabelValues("none", "dropped").Inc()
	return nil
}

func (n *NoopEventPublisher) Close() {}
