// Package broker announces stored submissions to downstream consumers.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/formpost/internal/domain/model"
)

// ErrPublish wraps every failure to hand a submission to the broker.
var ErrPublish = errors.New("publish submission failed")

const defaultMaxAttempts = 3

// Publisher announces a stored submission.
type Publisher interface {
	Publish(ctx context.Context, s model.Submission) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per submission, keyed by id with the
// submission JSON as value.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaWriter builds a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  defaultMaxAttempts,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaPublisher wraps w. topic is informational; w decides the target.
func NewKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// Topic returns the topic messages are written to.
func (p *KafkaPublisher) Topic() string { return p.topic }

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, s model.Submission) error { //nolint:gocritic // hugeParam: value semantics
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPublish, s.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(s.ID),
		Value: value,
		Time:  s.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, s.ID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every submission. Used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, model.Submission) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
