package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/domain"
)

const defaultFirstConnectTimeout = 5 * time.Second

// Viewer drives a View from the API and the push channel.
type Viewer struct {
	api  *Client
	sub  *Subscriber
	view *View
	log  *zap.Logger

	firstConnect time.Duration
}

type ViewerOption func(*Viewer)

// WithFirstConnectTimeout bounds how long Run waits for the push channel
// before fetching the flight list anyway.
func WithFirstConnectTimeout(d time.Duration) ViewerOption {
	return func(v *Viewer) {
		v.firstConnect = d
	}
}

func NewViewer(api *Client, sub *Subscriber, view *View, log *zap.Logger, opts ...ViewerOption) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{api: api, sub: sub, view: view, log: log, firstConnect: defaultFirstConnectTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewer) View() *View {
	return v.view
}

// Run subscribes first and then fetches the full list once, so no event
// published in between is lost. If the push channel is not reachable within
// the first-connect timeout the list is fetched anyway and the subscription
// keeps retrying; events from that gap are not replayed. Reconnects never refetch.
func (v *Viewer) Run(ctx context.Context) error {
	conn, err := v.connectFirst(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	v.fetch(ctx)

	if conn == nil {
		if conn, err = v.sub.Connect(ctx); err != nil {
			return err
		}
	}

	return v.sub.Run(ctx, conn, func(env broadcast.Envelope) {
		if err := v.view.Apply(env); err != nil {
			v.log.Warn("event not applied", zap.String("event", string(env.Kind)), zap.Error(err))
		}
	})
}

func (v *Viewer) connectFirst(ctx context.Context) (*websocket.Conn, error) {
	connectCtx, cancel := context.WithTimeout(ctx, v.firstConnect)
	defer cancel()

	conn, err := v.sub.Connect(connectCtx)
	if err != nil {
		v.log.Warn("push channel unavailable, fetching flights without it", zap.Error(err))
		return nil, err
	}
	return conn, nil
}

func (v *Viewer) fetch(ctx context.Context) {
	flights, err := v.api.List(ctx)
	if err != nil {
		v.log.Error("initial flight fetch failed", zap.Error(err))
		flights = []domain.FlightView{}
	}
	v.view.Replace(flights)
}

// Add creates a flight and applies the response locally; the broadcast echo is then a no-op.
func (v *Viewer) Add(ctx context.Context, create domain.FlightCreate) (domain.FlightView, error) {
	flight, err := v.api.Add(ctx, create)
	if err != nil {
		v.log.Error("add flight failed", zap.Error(err))
		return domain.FlightView{}, err
	}
	v.view.Add(flight)
	return flight, nil
}

func (v *Viewer) Update(ctx context.Context, flight domain.Flight) (domain.Flight, error) {
	updated, err := v.api.Update(ctx, flight)
	if err != nil {
		v.log.Error("update flight failed", zap.Int64("flight_id", flight.ID), zap.Error(err))
		return domain.Flight{}, err
	}
	v.view.Update(updated)
	return updated, nil
}

func (v *Viewer) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := v.api.Delete(ctx, id)
	if err != nil {
		v.log.Error("delete flight failed", zap.Int64("flight_id", id), zap.Error(err))
		return false, err
	}
	if deleted {
		v.view.Remove(id)
	}
	return deleted, nil
}
