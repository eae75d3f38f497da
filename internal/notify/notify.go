// Package notify turns relayed flight events into operator notifications.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
)

type Notifier struct {
	log *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{log: log}
}

// Notify logs one line describing the event. Unknown kinds are reported and skipped.
func (n *Notifier) Notify(_ context.Context, env broadcast.Envelope) error {
	switch env.Kind {
	case broadcast.FlightAdded:
		v, err := env.View()
		if err != nil {
			return err
		}
		n.log.Info("flight added",
			zap.Int64("flight_id", v.ID),
			zap.String("flight_number", v.FlightNumber),
			zap.String("route", route(v.DepartureAirport, v.ArrivalAirport)),
			zap.String("status", string(v.Status)),
		)
	case broadcast.FlightUpdated:
		f, err := env.Flight()
		if err != nil {
			return err
		}
		n.log.Info("flight updated",
			zap.Int64("flight_id", f.ID),
			zap.String("flight_number", f.FlightNumber),
			zap.String("route", route(f.DepartureAirport, f.ArrivalAirport)),
		)
	case broadcast.FlightDeleted:
		id, err := env.ID()
		if err != nil {
			return err
		}
		n.log.Info("flight deleted", zap.Int64("flight_id", id))
	default:
		n.log.Warn("unknown flight event", zap.String("event", string(env.Kind)))
	}
	return nil
}

func route(from, to string) string {
	return fmt.Sprintf("%s-%s", from, to)
}
