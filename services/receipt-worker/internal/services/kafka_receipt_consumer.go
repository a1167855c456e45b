package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/go-playground/validator/v10"
	"github.com/tripfund/payment-backend/pkg"
	kafkautils "github.com/tripfund/payment-backend/pkg/kafka"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/receipt-worker/configs"
	"github.com/tripfund/payment-backend/services/receipt-worker/internal/observability"
	"go.uber.org/zap"
)

// messageConsumer is the part of *kafka.Consumer the worker uses.
type messageConsumer interface {
	kafkautils.Committer
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

type dlqProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaReceiptConsumer struct {
	logger   *zap.Logger
	topic    string
	dlqTopic string
	service  ReceiptService
	consumer messageConsumer
	dlq      dlqProducer
	commits  *kafkautils.CommitManager
	validate *validator.Validate
	sem      chan struct{}
}

// NewKafkaReceiptConsumer connects to the brokers, ensures the topics exist and returns a consumer ready to Start.
func NewKafkaReceiptConsumer(ctx context.Context, logger *zap.Logger, cnf *configs.Config, service ReceiptService) (*KafkaReceiptConsumer, error) {
	err := kafkautils.InitKafkaTopics(ctx, logger, kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{Topic: cnf.KafkaPaymentTopic, NumPartitions: cnf.KafkaPartition},
			{Topic: cnf.KafkaDLQTopic, NumPartitions: 1, Retention: cnf.KafkaDLQRetention},
		},
	})
	if err != nil {
		return nil, err
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cnf.KafkaBrokers,
		"group.id":           cnf.KafkaConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // offsets go through the commit manager
	})
	if err != nil {
		return nil, err
	}
	dlq, err := kafkautils.NewIdempotentProducer(cnf.KafkaBrokers)
	if err != nil {
		_ = consumer.Close()
		return nil, err
	}
	go kafkautils.LogDeliveryReports(logger, dlq)

	return newKafkaReceiptConsumer(logger, consumer, dlq, service, cnf.KafkaPaymentTopic, cnf.KafkaDLQTopic, cnf.MaxConcurrentJobs), nil
}

func newKafkaReceiptConsumer(logger *zap.Logger, consumer messageConsumer, dlq dlqProducer, service ReceiptService, topic, dlqTopic string, maxJobs int) *KafkaReceiptConsumer {
	if maxJobs <= 0 {
		maxJobs = 1
	}
	return &KafkaReceiptConsumer{
		logger:   logger,
		topic:    topic,
		dlqTopic: dlqTopic,
		service:  service,
		consumer: consumer,
		dlq:      dlq,
		commits:  kafkautils.NewCommitManager(consumer, logger),
		validate: validator.New(),
		sem:      make(chan struct{}, maxJobs),
	}
}

// Start subscribes and consumes until ctx is done. The returned func waits for in-flight messages and closes the clients.
func (k *KafkaReceiptConsumer) Start(ctx context.Context) (func(), error) {
	if err := k.consumer.SubscribeTopics([]string{k.topic}, nil); err != nil {
		return nil, err
	}
	k.logger.Info("listening_to_kafka_topic", zap.String("topic", k.topic))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			msg, err := k.consumer.ReadMessage(500 * time.Millisecond)
			if err != nil {
				var kErr kafka.Error
				if errors.As(err, &kErr) && kErr.IsTimeout() {
					continue
				}
				k.logger.Error("kafka_read_failed", zap.Error(err))
				continue
			}
			observability.MessagesReceived.WithLabelValues(k.topic).Inc()
			k.commits.Track(msg)

			// Acquire semaphore slot, blocking if limit is reached
			k.sem <- struct{}{}
			observability.InflightJobs.Inc()
			go func(m *kafka.Message) {
				defer func() {
					<-k.sem
					observability.InflightJobs.Dec()
				}()
				k.handleMessage(ctx, m)
			}(msg)
		}
	}()

	return func() {
		<-done
		// drain the semaphore so every in-flight handler has acked
		for i := 0; i < cap(k.sem); i++ {
			k.sem <- struct{}{}
		}
		k.dlq.Flush(5000)
		k.dlq.Close()
		if err := k.consumer.Close(); err != nil {
			k.logger.Error("kafka_consumer_close_failed", zap.Error(err))
			return
		}
		k.logger.Info("kafka_consumer_closed")
	}, nil
}

// handleMessage records a receipt for one message. A message is acked after a successful insert
// or once it has been parked on the DLQ. If neither happened the offset stays uncommitted and
// the message is redelivered.
func (k *KafkaReceiptConsumer) handleMessage(ctx context.Context, msg *kafka.Message) {
	start := time.Now()
	defer func() {
		observability.ProcessLatency.WithLabelValues(k.topic).Observe(time.Since(start).Seconds())
	}()

	var event views.PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		k.parkAndAck(msg, string(msg.Key), "json_unmarshal_error", err)
		return
	}
	if err := k.validate.Struct(&event); err != nil {
		k.parkAndAck(msg, event.OrderID, "validation_error", err)
		return
	}

	if err := k.service.Record(ctx, event); err != nil {
		if ctx.Err() != nil {
			// shutting down: leave the offset uncommitted so the message is redelivered
			k.logger.Warn("receipt_interrupted", zap.String(pkg.OrderId, event.OrderID))
			return
		}
		k.parkAndAck(msg, event.OrderID, "record_receipt_error", err)
		return
	}
	k.commits.Ack(event.OrderID, msg)
}

func (k *KafkaReceiptConsumer) parkAndAck(msg *kafka.Message, key, reason string, cause error) {
	if err := k.sendToDLQ(msg, reason, cause); err != nil {
		k.logger.Error("message_left_uncommitted", zap.String("key", key), zap.String("reason", reason), zap.Error(err))
		return
	}
	k.commits.Ack(key, msg)
}

func (k *KafkaReceiptConsumer) sendToDLQ(original *kafka.Message, reason string, cause error) error {
	payload := map[string]any{
		"original_topic":     k.topic,
		"original_partition": original.TopicPartition.Partition,
		"original_offset":    original.TopicPartition.Offset,
		"key":                string(original.Key),
		"value":              string(original.Value),
		"failure_reason":     reason,
		"error":              cause.Error(),
		"failed_at":          time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal dlq payload: %w", err)
	}
	err = k.dlq.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.dlqTopic, Partition: kafka.PartitionAny},
		Key:            original.Key,
		Value:          b,
	}, nil)
	if err != nil {
		observability.DLQPublished.WithLabelValues("produce_failed").Inc()
		return fmt.Errorf("produce to %s: %w", k.dlqTopic, err)
	}
	observability.DLQPublished.WithLabelValues(reason).Inc()
	k.logger.Warn("sent_to_dlq", zap.ByteString("key", original.Key), zap.String("reason", reason), zap.Error(cause))
	return nil
}
