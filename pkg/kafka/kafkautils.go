package kafkautils

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

type KafkaConfig struct {
	BootstrapServers string
	Topics           []TopicConfig
}

type TopicConfig struct {
	Topic             string
	NumPartitions     int
	ReplicationFactor int
	Retention         time.Duration
}

func (t TopicConfig) spec() kafka.TopicSpecification {
	cfg := map[string]string{"cleanup.policy": "delete"}
	if t.Retention > 0 {
		cfg["retention.ms"] = fmt.Sprintf("%d", t.Retention.Milliseconds())
	}
	replication := t.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}
	return kafka.TopicSpecification{
		Topic:             t.Topic,
		NumPartitions:     t.NumPartitions,
		ReplicationFactor: replication,
		Config:            cfg,
	}
}

// InitKafkaTopics creates the configured topics, tolerating ones that already exist.
// Broker unavailability is retried with exponential backoff for up to two minutes.
func InitKafkaTopics(ctx context.Context, logger *zap.Logger, cnf KafkaConfig) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": cnf.BootstrapServers})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	topics := make([]kafka.TopicSpecification, 0, len(cnf.Topics))
	for _, topic := range cnf.Topics {
		topics = append(topics, topic.spec())
	}

	operation := func() error {
		results, err := admin.CreateTopics(ctx, topics, kafka.SetAdminOperationTimeout(30*time.Second))
		if err != nil {
			return fmt.Errorf("failed to create topics: %w", err)
		}
		for _, result := range results {
			if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
				return fmt.Errorf("kafka topic %s creation failed: %v", result.Topic, result.Error)
			}
			logger.Info("kafka_topic_ready", zap.String("topic", result.Topic))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// NewIdempotentProducer returns a producer that waits for all replicas and never duplicates on retry.
func NewIdempotentProducer(brokers string) (*kafka.Producer, error) {
	return kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
}

// LogDeliveryReports drains producer events until the producer is closed.
func LogDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("kafka_delivery_failed",
					zap.String("topic", topicOf(ev)),
					zap.ByteString("key", ev.Key),
					zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			logger.Warn("kafka_producer_error", zap.Error(ev))
		}
	}
}

func topicOf(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}
