package services

import (
	"context"
	"encoding/json"
	"hash/fnv"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	kafkautils "github.com/tripfund/payment-backend/pkg/kafka"
	"github.com/tripfund/payment-backend/pkg/views"
	"github.com/tripfund/payment-backend/services/payment-api/configs"
	"github.com/tripfund/payment-backend/services/payment-api/internal/observability"
	"go.uber.org/zap"
)

// kafkaProducer is the subset of *kafka.Producer used for publishing.
type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaEventPublisher struct {
	logger     *zap.Logger
	producer   kafkaProducer
	topic      string
	partitions uint32
}

// NewKafkaEventPublisher ensures the payment topic exists and starts an idempotent producer.
func NewKafkaEventPublisher(ctx context.Context, logger *zap.Logger, cnf *configs.Config) (EventPublisher, error) {
	topicConfig := kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{
				Topic:         cnf.KafkaPaymentTopic,
				NumPartitions: cnf.KafkaPartition,
				Retention:     cnf.KafkaPaymentRetention,
			},
		},
	}
	if err := kafkautils.InitKafkaTopics(ctx, logger, topicConfig); err != nil {
		return nil, err
	}

	p, err := kafkautils.NewIdempotentProducer(cnf.KafkaBrokers)
	if err != nil {
		return nil, err
	}
	logger.Info("kafka_producer_created", zap.String("brokers", cnf.KafkaBrokers))
	go kafkautils.LogDeliveryReports(logger, p)

	return newKafkaEventPublisher(logger, p, cnf.KafkaPaymentTopic, uint32(cnf.KafkaPartition)), nil
}

func newKafkaEventPublisher(logger *zap.Logger, p kafkaProducer, topic string, partitions uint32) *KafkaEventPublisher {
	if partitions == 0 {
		partitions = 1
	}
	return &KafkaEventPublisher{logger: logger, producer: p, topic: topic, partitions: partitions}
}

func (k *KafkaEventPublisher) PublishPaymentVerified(_ context.Context, event views.PaymentEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Events of one order always land on the same partition.
	h := fnv.New32a()
	_, _ = h.Write([]byte(event.OrderID))
	partition := int32(h.Sum32() % k.partitions)

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: partition,
		},
		Key:   []byte(event.OrderID),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.EventType)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
	}, nil)
	if err != nil {
		observability.EventsPublished.WithLabelValues("kafka", "error").Inc()
		return err
	}
	observability.EventsPublished.WithLabelValues("kafka", "queued").Inc()
	return nil
}

func (k *KafkaEventPublisher) Close() {
	k.producer.Flush(5000)
	k.producer.Close()
}
