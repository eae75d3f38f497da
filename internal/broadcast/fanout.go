package broadcast

import (
	"context"

	"go.uber.org/zap"
)

// Fanout publishes to a primary publisher and mirrors each event to
// secondary sinks. Only the primary result is returned.
type Fanout struct {
	primary     Publisher
	secondaries []Publisher
	log         *zap.Logger
}

func NewFanout(log *zap.Logger, primary Publisher, secondaries ...Publisher) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{primary: primary, secondaries: secondaries, log: log}
}

func (f *Fanout) Publish(ctx context.Context, event Event) error {
	err := f.primary.Publish(ctx, event)
	for _, p := range f.secondaries {
		if serr := p.Publish(ctx, event); serr != nil {
			f.log.Warn("secondary event sink failed", zap.String("event", string(event.Kind)), zap.Error(serr))
		}
	}
	return err
}

var _ Publisher = (*Fanout)(nil)
