package kafka

import (
	"context"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
)

// EventRelay mirrors broadcast events onto a Kafka topic, keyed by event kind.
type EventRelay struct {
	producer *Producer
	topic    string
}

func NewEventRelay(producer *Producer, topic string) *EventRelay {
	return &EventRelay{producer: producer, topic: topic}
}

func (r *EventRelay) Publish(ctx context.Context, event broadcast.Event) error {
	return r.producer.Publish(ctx, r.topic, string(event.Kind), event)
}

var _ broadcast.Publisher = (*EventRelay)(nil)
