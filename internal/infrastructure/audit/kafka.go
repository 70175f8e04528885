// Package audit publishes account lifecycle events to Kafka.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
)

const (
	DefaultTopic   = "user_events"
	publishTimeout = 5 * time.Second
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements ports.AuditPublisher. Events are JSON encoded and
// keyed by user id so that one user's events stay ordered on a partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
// With no brokers it returns a publisher that drops every event.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if len(brokers) == 0 {
		return &KafkaPublisher{topic: topic}
	}
	return &KafkaPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

// Enabled reports whether events are actually sent anywhere.
func (p *KafkaPublisher) Enabled() bool { return p.writer != nil }

// Publish implements ports.AuditPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.AuditEvent) error {
	if p.writer == nil {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal %s: %w", ev.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(ev.UserID),
		Value: data,
		Time:  ev.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("audit: write %s to %s: %w", ev.Type, p.topic, err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
