package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg/views"
	"go.uber.org/zap/zaptest"
)

const testTopic = "payments-verified"

type mockConsumer struct {
	mock.Mock
}

func (m *mockConsumer) CommitOffsets(offsets []kafka.TopicPartition) ([]kafka.TopicPartition, error) {
	args := m.Called(offsets)
	return offsets, args.Error(0)
}

func (m *mockConsumer) SubscribeTopics(topics []string, cb kafka.RebalanceCb) error {
	return m.Called(topics, cb).Error(0)
}

func (m *mockConsumer) ReadMessage(timeout time.Duration) (*kafka.Message, error) {
	args := m.Called(timeout)
	msg, _ := args.Get(0).(*kafka.Message)
	return msg, args.Error(1)
}

func (m *mockConsumer) Close() error {
	return m.Called().Error(0)
}

type mockDLQ struct {
	mock.Mock
}

func (m *mockDLQ) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	return m.Called(msg, deliveryChan).Error(0)
}

func (m *mockDLQ) Flush(timeoutMs int) int {
	return m.Called(timeoutMs).Int(0)
}

func (m *mockDLQ) Close() {
	m.Called()
}

type mockReceiptService struct {
	mock.Mock
}

func (m *mockReceiptService) Record(ctx context.Context, event views.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}

func kafkaMessage(t *testing.T, offset int64, value interface{}) *kafka.Message {
	t.Helper()
	topic := testTopic
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		raw = b
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: kafka.Offset(offset)},
		Key:            []byte("order_1"),
		Value:          raw,
	}
}

func committedAt(offset int64) interface{} {
	return mock.MatchedBy(func(tps []kafka.TopicPartition) bool {
		return len(tps) == 1 && int64(tps[0].Offset) == offset
	})
}

func newTestConsumer(t *testing.T, c *mockConsumer, dlq *mockDLQ, svc *mockReceiptService) *KafkaReceiptConsumer {
	return newKafkaReceiptConsumer(zaptest.NewLogger(t), c, dlq, svc, testTopic, "payments-verified-dlq", 2)
}

func TestHandleMessage_RecordsAndCommits(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	c.On("CommitOffsets", committedAt(8)).Return(nil).Once()
	svc.On("Record", mock.Anything, mock.MatchedBy(func(e views.PaymentEvent) bool { return e.OrderID == "order_1" })).Return(nil).Once()

	k := newTestConsumer(t, c, dlq, svc)
	msg := kafkaMessage(t, 7, paymentEvent("order_1"))
	k.commits.Track(msg)
	k.handleMessage(context.Background(), msg)

	assert.Equal(t, int64(7), k.commits.Committed(testTopic, 0))
	dlq.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestHandleMessage_UndecodableGoesToDLQ(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	c.On("CommitOffsets", committedAt(1)).Return(nil).Once()
	var parked *kafka.Message
	dlq.On("Produce", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		parked = args.Get(0).(*kafka.Message)
	}).Return(nil).Once()

	k := newTestConsumer(t, c, dlq, svc)
	msg := kafkaMessage(t, 0, []byte("{not json"))
	k.commits.Track(msg)
	k.handleMessage(context.Background(), msg)

	require.NotNil(t, parked)
	assert.Equal(t, "payments-verified-dlq", *parked.TopicPartition.Topic)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(parked.Value, &payload))
	assert.Equal(t, "json_unmarshal_error", payload["failure_reason"])
	assert.Equal(t, "{not json", payload["value"])
	svc.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestHandleMessage_InvalidEventGoesToDLQ(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	c.On("CommitOffsets", committedAt(1)).Return(nil).Once()
	dlq.On("Produce", mock.Anything, mock.Anything).Return(nil).Once()

	event := paymentEvent("order_1")
	event.Amount = 0
	event.EventType = "PaymentRefunded"

	k := newTestConsumer(t, c, dlq, svc)
	msg := kafkaMessage(t, 0, event)
	k.commits.Track(msg)
	k.handleMessage(context.Background(), msg)

	svc.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	dlq.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestHandleMessage_RecordFailureParksAndCommits(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	c.On("CommitOffsets", committedAt(4)).Return(nil).Once()
	dlq.On("Produce", mock.Anything, mock.Anything).Return(nil).Once()
	svc.On("Record", mock.Anything, mock.Anything).Return(errors.Join(ErrRetriesExhausted, errors.New("db down"))).Once()

	k := newTestConsumer(t, c, dlq, svc)
	msg := kafkaMessage(t, 3, paymentEvent("order_1"))
	k.commits.Track(msg)
	k.handleMessage(context.Background(), msg)

	dlq.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestHandleMessage_DLQFailureLeavesOffsetUncommitted(t *testing.T) {
	tests := []struct {
		name  string
		setup func(svc *mockReceiptService) *kafka.Message
	}{
		{"record failure", func(svc *mockReceiptService) *kafka.Message {
			svc.On("Record", mock.Anything, mock.Anything).Return(errors.Join(ErrRetriesExhausted, errors.New("db down"))).Once()
			return kafkaMessage(t, 3, paymentEvent("order_1"))
		}},
		{"undecodable", func(*mockReceiptService) *kafka.Message {
			return kafkaMessage(t, 3, []byte("{not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
			dlq.On("Produce", mock.Anything, mock.Anything).
				Return(kafka.NewError(kafka.ErrQueueFull, "local queue full", false)).Once()

			k := newTestConsumer(t, c, dlq, svc)
			msg := tt.setup(svc)
			k.commits.Track(msg)
			k.handleMessage(context.Background(), msg)

			assert.Equal(t, int64(2), k.commits.Committed(testTopic, 0))
			c.AssertNotCalled(t, "CommitOffsets", mock.Anything)
			dlq.AssertExpectations(t)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleMessage_ShutdownLeavesOffsetUncommitted(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	svc.On("Record", mock.Anything, mock.Anything).Return(context.Canceled).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := newTestConsumer(t, c, dlq, svc)
	msg := kafkaMessage(t, 3, paymentEvent("order_1"))
	k.commits.Track(msg)
	k.handleMessage(ctx, msg)

	assert.Equal(t, int64(2), k.commits.Committed(testTopic, 0))
	c.AssertNotCalled(t, "CommitOffsets", mock.Anything)
	dlq.AssertNotCalled(t, "Produce", mock.Anything, mock.Anything)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	c, dlq, svc := &mockConsumer{}, &mockDLQ{}, &mockReceiptService{}
	c.On("SubscribeTopics", []string{testTopic}, mock.Anything).Return(nil).Once()
	c.On("ReadMessage", mock.Anything).Return(kafkaMessage(t, 0, paymentEvent("order_1")), nil).Once()
	c.On("ReadMessage", mock.Anything).Return(nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false))
	c.On("CommitOffsets", committedAt(1)).Return(nil).Once()
	c.On("Close").Return(nil).Once()
	dlq.On("Flush", 5000).Return(0).Once()
	dlq.On("Close").Once()

	recorded := make(chan struct{})
	svc.On("Record", mock.Anything, mock.Anything).Run(func(mock.Arguments) { close(recorded) }).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	k := newTestConsumer(t, c, dlq, svc)
	stop, err := k.Start(ctx)
	require.NoError(t, err)

	select {
	case <-recorded:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not processed")
	}
	cancel()
	stop()

	assert.Eventually(t, func() bool { return k.commits.Committed(testTopic, 0) == 0 }, time.Second, 10*time.Millisecond)
	c.AssertExpectations(t)
	dlq.AssertExpectations(t)
}
