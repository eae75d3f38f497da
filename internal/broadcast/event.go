// Package broadcast fans flight mutation events out to every connected viewer.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Domenick1991/flightdashboard/internal/domain"
)

type EventKind string

const (
	FlightAdded   EventKind = "FlightAdded"
	FlightUpdated EventKind = "FlightUpdated"
	FlightDeleted EventKind = "FlightDeleted"
)

// Event is one mutation notification as written to subscribers:
// {"event": "FlightAdded", "data": {...}}.
type Event struct {
	Kind EventKind `json:"event"`
	Data any       `json:"data"`
}

func NewFlightAdded(view domain.FlightView) Event {
	return Event{Kind: FlightAdded, Data: view}
}

func NewFlightUpdated(flight domain.Flight) Event {
	return Event{Kind: FlightUpdated, Data: flight}
}

// NewFlightDeleted carries the id exactly as the client sent it.
func NewFlightDeleted(id string) Event {
	return Event{Kind: FlightDeleted, Data: id}
}

// Publisher delivers an event to its subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Envelope is the receiving side of Event, with the payload left undecoded.
type Envelope struct {
	Kind EventKind       `json:"event"`
	Data json.RawMessage `json:"data"`
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

func (e Envelope) View() (domain.FlightView, error) {
	var v domain.FlightView
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return domain.FlightView{}, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return v, nil
}

func (e Envelope) Flight() (domain.Flight, error) {
	var f domain.Flight
	if err := json.Unmarshal(e.Data, &f); err != nil {
		return domain.Flight{}, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return f, nil
}

// ID decodes a FlightDeleted payload, accepting either a string or a number.
func (e Envelope) ID() (int64, error) {
	var raw any
	if err := json.Unmarshal(e.Data, &raw); err != nil {
		return 0, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s payload %s is not an integer id", e.Kind, string(e.Data))
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected %s payload %s", e.Kind, string(e.Data))
	}
}
