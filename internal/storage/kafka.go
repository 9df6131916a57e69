package storage

import (
	"context"
	"encoding/json"
	"strconv"

	"overcooked-live/internal/outbox"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ MessageWriter = (*kafka.Writer)(nil)

type KafkaPublisher struct {
	Writer MessageWriter
}

var _ outbox.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// Publish writes env keyed by restaurant id so a restaurant's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, env outbox.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(env.RestaurantID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(env.Event)},
		},
	})
}
