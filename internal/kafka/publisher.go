package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/journal"
	"budget/internal/log"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes recorded entries to a Kafka topic, keyed by category id so
// one category's entries stay ordered within a partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *log.Logger
}

func NewPublisher(brokers []string, topic string, logger *log.Logger) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Publisher{
		writer: w,
		topic:  topic,
		logger: logger.WithComponent(log.ComponentKafka),
	}
}

// PublishEntry implements journal.EntryPublisher
func (p *Publisher) PublishEntry(ctx context.Context, e journal.EntryRecord) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.CategoryID),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	p.logger.DebugContext(ctx, "Published entry",
		log.FieldCategory, e.Category,
		log.FieldSeq, e.Seq,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ journal.EntryPublisher = (*Publisher)(nil)
