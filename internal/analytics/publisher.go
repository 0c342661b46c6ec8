// Package analytics streams lookup events to Kafka for offline analysis.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"lexicon/internal/config"
)

// LookupEvent describes one answered lookup
type LookupEvent struct {
	Word     string    `json:"word"`
	Found    bool      `json:"found"`
	Cached   bool      `json:"cached"`
	ClientIP string    `json:"client_ip,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher accepts lookup events
type Publisher interface {
	Publish(ctx context.Context, event LookupEvent) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LookupEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// KafkaPublisher writes JSON-encoded events keyed by word
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for cfg.Topic. Writes are async so
// a slow broker never delays a lookup response.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	p := &KafkaPublisher{
		writer: w,
		logger: slog.Default().With("component", "kafka-publisher", "topic", cfg.Topic),
	}
	w.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			p.logger.Error("failed to publish lookup events", "count", len(messages), "error", err)
		}
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, event LookupEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling lookup event: %w", err)
	}

	msg := kafka.Message{Key: []byte(event.Word), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
