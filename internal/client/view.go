// Package client keeps a local, live copy of the flight list by combining
// one initial fetch with the server's change broadcasts.
package client

import (
	"fmt"
	"sync"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/domain"
)

// View is an ordered list of flights keyed by id. Every mutation is
// idempotent, so a client's own broadcast echo leaves it unchanged.
type View struct {
	mu       sync.Mutex
	flights  []domain.FlightView
	onChange func([]domain.FlightView)
}

func NewView() *View {
	return &View{}
}

// OnChange registers fn to receive a snapshot after every change.
func (v *View) OnChange(fn func([]domain.FlightView)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

func (v *View) Snapshot() []domain.FlightView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) Replace(flights []domain.FlightView) {
	v.mutate(func() bool {
		v.flights = append([]domain.FlightView(nil), flights...)
		return true
	})
}

// Add appends flight unless an entry with its id exists, in which case that entry is replaced.
func (v *View) Add(flight domain.FlightView) {
	v.mutate(func() bool {
		if i := v.indexLocked(flight.ID); i >= 0 {
			if v.flights[i] == flight {
				return false
			}
			v.flights[i] = flight
			return true
		}
		v.flights = append(v.flights, flight)
		return true
	})
}

// Update replaces the entry with the same id. Update events carry no
// status, so the entry keeps its last known one. Unknown ids are ignored.
func (v *View) Update(flight domain.Flight) {
	v.mutate(func() bool {
		i := v.indexLocked(flight.ID)
		if i < 0 || v.flights[i].Flight == flight {
			return false
		}
		v.flights[i].Flight = flight
		return true
	})
}

func (v *View) Remove(id int64) {
	v.mutate(func() bool {
		i := v.indexLocked(id)
		if i < 0 {
			return false
		}
		v.flights = append(v.flights[:i], v.flights[i+1:]...)
		return true
	})
}

// Apply reconciles one broadcast event into the view.
func (v *View) Apply(env broadcast.Envelope) error {
	switch env.Kind {
	case broadcast.FlightAdded:
		flight, err := env.View()
		if err != nil {
			return err
		}
		v.Add(flight)
	case broadcast.FlightUpdated:
		flight, err := env.Flight()
		if err != nil {
			return err
		}
		v.Update(flight)
	case broadcast.FlightDeleted:
		id, err := env.ID()
		if err != nil {
			return err
		}
		v.Remove(id)
	default:
		return fmt.Errorf("unknown event %q", env.Kind)
	}
	return nil
}

func (v *View) mutate(fn func() bool) {
	v.mu.Lock()
	changed := fn()
	notify := v.onChange
	var snapshot []domain.FlightView
	if changed && notify != nil {
		snapshot = v.snapshotLocked()
	}
	v.mu.Unlock()

	if changed && notify != nil {
		notify(snapshot)
	}
}

func (v *View) indexLocked(id int64) int {
	for i := range v.flights {
		if v.flights[i].ID == id {
			return i
		}
	}
	return -1
}

func (v *View) snapshotLocked() []domain.FlightView {
	return append([]domain.FlightView(nil), v.flights...)
}
