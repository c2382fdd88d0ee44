package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer relies on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer  MessageWriter
	Brokers []string
	Logger  *logger.Logger

	// BatchCompletedTopic receives one message per finished batch.
	BatchCompletedTopic string
}

// NewProducer builds a producer whose writer picks the topic per message.
func NewProducer(brokers []string, batchCompletedTopic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{
		Writer:              writer,
		Brokers:             brokers,
		Logger:              log,
		BatchCompletedTopic: batchCompletedTopic,
	}
}

// Publish writes one message to topic. When the first write fails the topic is
// created and the write retried once.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	err := p.Writer.WriteMessages(ctx, msg)
	if err == nil {
		p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("key=%s", key))
		return nil
	}

	p.Logger.Warn("KAFKA", fmt.Sprintf("Publish to %s failed: %v", topic, err))
	if len(p.Brokers) == 0 {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	if err := CreateTopicIfNotExists(p.Brokers, topic, p.Logger); err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s after topic creation: %w", topic, err)
	}
	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("key=%s after retry", key))
	return nil
}

// PublishBatchCompleted streams the summary of a finished batch, keyed by
// batch ID.
func (p *Producer) PublishBatchCompleted(ctx context.Context, event models.BatchCompletedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal batch event: %w", err)
	}
	return p.Publish(ctx, p.BatchCompletedTopic, event.BatchID, value)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
