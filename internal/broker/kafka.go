package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Activity event types published to the broker.
const (
	EventPostCreated = "post_created"
	EventPostEdited  = "post_edited"
	EventPostDeleted = "post_deleted"
	EventFriendAdded = "friend_added"
)

// Event is the JSON payload written for every activity.
type Event struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	PostID   string    `json:"post_id,omitempty"`
	FriendID string    `json:"friend_id,omitempty"`
	At       time.Time `json:"at"`
}

// EventWriter publishes activity events. The Kafka writer implements it
// in production; tests use MockWriter.
type EventWriter interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaWriter publishes events to a Kafka topic.
type KafkaWriter struct {
	writer *kafka.Writer
}

// NewKafkaWriter creates a Kafka-backed event writer.
func NewKafkaWriter(broker, topic string) *KafkaWriter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
	}
	return &KafkaWriter{writer: w}
}

// Publish writes the event as a JSON message keyed by user id.
func (w *KafkaWriter) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (w *KafkaWriter) Close() error {
	return w.writer.Close()
}
