package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/views"
	"go.uber.org/zap/zaptest"
)

func verifiedEvent(orderID string) views.PaymentEvent {
	return views.PaymentEvent{
		EventID:   "4b9f0a3e-5f6c-4a43-8f5e-2b7c9d1e0a11",
		EventType: views.EventPaymentVerified,
		OrderID:   orderID,
		PaymentID: "pay_xyz",
		Amount:    50000,
		Currency:  "INR",
		Purpose:   pkg.OrderPurposeTravel,
		PaidAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	return m.Called(msg, deliveryChan).Error(0)
}

func (m *mockProducer) Flush(timeoutMs int) int {
	return m.Called(timeoutMs).Int(0)
}

func (m *mockProducer) Close() {
	m.Called()
}

func TestKafkaEventPublisher_KeysByOrderID(t *testing.T) {
	p := &mockProducer{}
	var sent []*kafka.Message
	p.On("Produce", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = append(sent, args.Get(0).(*kafka.Message))
	}).Return(nil)

	pub := newKafkaEventPublisher(zaptest.NewLogger(t), p, "payments-verified", 4)
	require.NoError(t, pub.PublishPaymentVerified(context.Background(), verifiedEvent("order_abc")))
	require.NoError(t, pub.PublishPaymentVerified(context.Background(), verifiedEvent("order_abc")))

	require.Len(t, sent, 2)
	assert.Equal(t, []byte("order_abc"), sent[0].Key)
	assert.Equal(t, "payments-verified", *sent[0].TopicPartition.Topic)
	assert.Equal(t, sent[0].TopicPartition.Partition, sent[1].TopicPartition.Partition)
	assert.True(t, sent[0].TopicPartition.Partition >= 0 && sent[0].TopicPartition.Partition < 4)

	var decoded views.PaymentEvent
	require.NoError(t, json.Unmarshal(sent[0].Value, &decoded))
	assert.Equal(t, "pay_xyz", decoded.PaymentID)
}

func TestKafkaEventPublisher_ProduceError(t *testing.T) {
	p := &mockProducer{}
	p.On("Produce", mock.Anything, mock.Anything).Return(errors.New("queue full"))

	pub := newKafkaEventPublisher(zaptest.NewLogger(t), p, "payments-verified", 4)
	assert.Error(t, pub.PublishPaymentVerified(context.Background(), verifiedEvent("order_abc")))
}

func TestKafkaEventPublisher_CloseFlushes(t *testing.T) {
	p := &mockProducer{}
	p.On("Flush", 5000).Return(0).Once()
	p.On("Close").Return().Once()

	newKafkaEventPublisher(zaptest.NewLogger(t), p, "payments-verified", 1).Close()
	p.AssertExpectations(t)
}

type mockAmqpChannel struct {
	mock.Mock
}

func (m *mockAmqpChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *mockAmqpChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockAmqpChannel) Close() error {
	return m.Called().Error(0)
}

func TestAmqpEventPublisher_PublishesPersistentMessage(t *testing.T) {
	ch := &mockAmqpChannel{}
	ch.On("ExchangeDeclare", "payments", "topic", true, false, false, false, mock.Anything).Return(nil).Once()
	ch.On("PublishWithContext", mock.Anything, "payments", RoutingKeyPaymentVerified, false, false,
		mock.MatchedBy(func(p amqp.Publishing) bool {
			var e views.PaymentEvent
			return p.DeliveryMode == amqp.Persistent &&
				p.ContentType == "application/json" &&
				json.Unmarshal(p.Body, &e) == nil && e.OrderID == "order_abc"
		})).Return(nil).Once()

	pub, err := newAmqpEventPublisher(zaptest.NewLogger(t), ch, "payments")
	require.NoError(t, err)
	require.NoError(t, pub.PublishPaymentVerified(context.Background(), verifiedEvent("order_abc")))
	ch.AssertExpectations(t)
}

func TestAmqpEventPublisher_DeclareFailureClosesChannel(t *testing.T) {
	ch := &mockAmqpChannel{}
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("access refused")).Once()
	ch.On("Close").Return(nil).Once()

	_, err := newAmqpEventPublisher(zaptest.NewLogger(t), ch, "payments")
	assert.Error(t, err)
	ch.AssertExpectations(t)
}
