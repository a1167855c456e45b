package services

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/payment-api/configs"
	"github.com/tripfund/payment-backend/services/payment-api/internal/observability"
	"go.uber.org/zap"
)

// RoutingKeyPaymentVerified is the topic-exchange routing key for verified payments.
const RoutingKeyPaymentVerified = "payment.verified"

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AmqpEventPublisher struct {
	logger   *zap.Logger
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
}

// NewAmqpEventPublisher dials the broker and declares a durable topic exchange.
func NewAmqpEventPublisher(logger *zap.Logger, cnf *configs.Config) (EventPublisher, error) {
	conn, err := amqp.Dial(cnf.AmqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p, err := newAmqpEventPublisher(logger, ch, cnf.AmqpExchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	logger.Info("amqp_publisher_created", zap.String("exchange", cnf.AmqpExchange))
	return p, nil
}

func newAmqpEventPublisher(logger *zap.Logger, ch amqpChannel, exchange string) (*AmqpEventPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &AmqpEventPublisher{logger: logger, channel: ch, exchange: exchange}, nil
}

func (a *AmqpEventPublisher) PublishPaymentVerified(ctx context.Context, event views.PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = a.channel.PublishWithContext(ctx, a.exchange, RoutingKeyPaymentVerified, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.EventType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		observability.EventsPublished.WithLabelValues("amqp", "error").Inc()
		return err
	}
	observability.EventsPublished.WithLabelValues("amqp", "published").Inc()
	return nil
}

func (a *AmqpEventPublisher) Close() {
	if err := a.channel.Close(); err != nil {
		a.logger.Warn("amqp_channel_close_failed", zap.Error(err))
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Warn("amqp_connection_close_failed", zap.Error(err))
		}
	}
}
