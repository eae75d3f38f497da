package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrHubClosed = errors.New("broadcast hub is not running")

// Subscriber is one connected viewer. Messages arrive on Send in publish
// order; Send is closed when the subscriber is removed.
type Subscriber struct {
	ID   uuid.UUID
	send chan []byte
}

func (s *Subscriber) Send() <-chan []byte {
	return s.send
}

type published struct {
	payload []byte
	done    chan struct{}
}

// Hub owns the subscriber registry. Registration, removal and fan-out run
// on a single goroutine, so every subscriber observes the same order.
type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan published
	stopped    chan struct{}
	buffer     int
	log        *zap.Logger
}

func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan published),
		stopped:    make(chan struct{}),
		buffer:     buffer,
		log:        log,
	}
}

// Run serves the registry until ctx is done. It must be started before
// Subscribe or Publish are called.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.stopped)

	subscribers := make(map[*Subscriber]struct{})
	drop := func(s *Subscriber) {
		if _, ok := subscribers[s]; ok {
			delete(subscribers, s)
			close(s.send)
		}
	}
	defer func() {
		for s := range subscribers {
			drop(s)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-h.register:
			subscribers[s] = struct{}{}
			h.log.Debug("subscriber connected", zap.Stringer("subscriber_id", s.ID), zap.Int("subscribers", len(subscribers)))
		case s := <-h.unregister:
			drop(s)
			h.log.Debug("subscriber disconnected", zap.Stringer("subscriber_id", s.ID), zap.Int("subscribers", len(subscribers)))
		case msg := <-h.broadcast:
			for s := range subscribers {
				select {
				case s.send <- msg.payload:
				default:
					h.log.Warn("subscriber too slow, dropping", zap.Stringer("subscriber_id", s.ID))
					drop(s)
				}
			}
			close(msg.done)
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context) (*Subscriber, error) {
	s := &Subscriber{ID: uuid.New(), send: make(chan []byte, h.buffer)}
	select {
	case h.register <- s:
		return s, nil
	case <-h.stopped:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe removes s. It is safe to call more than once and after Run has returned.
func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.stopped:
	}
}

// Publish returns once the event has been queued for every current subscriber.
func (h *Hub) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Kind, err)
	}

	msg := published{payload: payload, done: make(chan struct{})}
	select {
	case h.broadcast <- msg:
	case <-h.stopped:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-msg.done:
		return nil
	case <-h.stopped:
		return ErrHubClosed
	}
}

var _ Publisher = (*Hub)(nil)
