package kafkautils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/tripfund/payment-backend/pkg"
	"go.uber.org/zap"
)

// Committer is the part of *kafka.Consumer the manager needs.
type Committer interface {
	CommitOffsets(offsets []kafka.TopicPartition) ([]kafka.TopicPartition, error)
}

type topicPartition struct {
	topic     string
	partition int32
}

// CommitManager commits offsets only once every earlier offset on the partition has been acked,
// so messages finished out of order by concurrent workers are never skipped on restart.
type CommitManager struct {
	mu        sync.Mutex
	committed map[topicPartition]int64              // highest contiguous acked offset
	pending   map[topicPartition]map[int64]struct{} // acked offsets above the contiguous mark
	committer Committer
	log       *zap.Logger
}

func NewCommitManager(c Committer, l *zap.Logger) *CommitManager {
	return &CommitManager{
		committed: make(map[topicPartition]int64),
		pending:   make(map[topicPartition]map[int64]struct{}),
		committer: c,
		log:       l,
	}
}

// Track registers the first offset seen for a partition. Offsets below it are treated as done.
func (m *CommitManager) Track(msg *kafka.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := topicPartition{topic: *msg.TopicPartition.Topic, partition: msg.TopicPartition.Partition}
	if _, ok := m.committed[key]; !ok {
		m.committed[key] = int64(msg.TopicPartition.Offset) - 1
	}
}

// Ack marks msg as processed and commits the partition up to the highest contiguous offset.
func (m *CommitManager) Ack(orderID string, msg *kafka.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := topicPartition{topic: *msg.TopicPartition.Topic, partition: msg.TopicPartition.Partition}
	off := int64(msg.TopicPartition.Offset)

	high, ok := m.committed[key]
	if !ok {
		high = off - 1
		m.committed[key] = high
	}
	if off <= high {
		return
	}
	if m.pending[key] == nil {
		m.pending[key] = map[int64]struct{}{}
	}
	m.pending[key][off] = struct{}{}

	next := high
	for {
		if _, ok := m.pending[key][next+1]; !ok {
			break
		}
		next++
		delete(m.pending[key], next)
	}
	if next == high {
		return
	}

	tp := kafka.TopicPartition{Topic: &key.topic, Partition: key.partition, Offset: kafka.Offset(next + 1)}
	if _, err := m.committer.CommitOffsets([]kafka.TopicPartition{tp}); err != nil {
		m.log.Error("offset_commit_failed",
			zap.String(pkg.OrderId, orderID),
			zap.String("topic", key.topic),
			zap.Int32("partition", key.partition),
			zap.Int64("attempted_offset", next), zap.Error(err))
		// keep the acked offsets so the next ack retries the commit
		for o := high + 1; o <= next; o++ {
			m.pending[key][o] = struct{}{}
		}
		return
	}
	m.committed[key] = next
	m.log.Debug("offset_committed",
		zap.String(pkg.OrderId, orderID),
		zap.String("topic", key.topic),
		zap.Int32("partition", key.partition),
		zap.Int64("offset", next))
}

// Committed returns the highest committed offset for a partition, or -1 if none.
func (m *CommitManager) Committed(topic string, partition int32) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.committed[topicPartition{topic: topic, partition: partition}]; ok {
		return v
	}
	return -1
}
