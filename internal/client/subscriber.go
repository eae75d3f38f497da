package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
)

// Subscriber holds a push channel connection open, redialling with
// exponential backoff when it drops. Missed events are not replayed.
type Subscriber struct {
	url        string
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
	log        *zap.Logger
}

func NewSubscriber(url string, minBackoff, maxBackoff time.Duration, log *zap.Logger) *Subscriber {
	if minBackoff <= 0 {
		minBackoff = time.Second
	}
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{
		url:        url,
		dialer:     websocket.DefaultDialer,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		log:        log,
	}
}

// Connect dials until it succeeds or ctx is done.
func (s *Subscriber) Connect(ctx context.Context) (*websocket.Conn, error) {
	b := retry.NewExponential(s.minBackoff)
	b = retry.WithCappedDuration(s.maxBackoff, b)
	b = retry.WithJitterPercent(10, b)

	var conn *websocket.Conn
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		c, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.log.Warn("push channel dial failed", zap.String("url", s.url), zap.Error(err))
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("connected to push channel", zap.String("url", s.url))
	return conn, nil
}

// Run reads events from conn and passes them to handle. When the
// connection drops it reconnects and carries on. It returns when ctx is done.
func (s *Subscriber) Run(ctx context.Context, conn *websocket.Conn, handle func(broadcast.Envelope)) error {
	for {
		err := s.pump(ctx, conn, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("push channel disconnected, reconnecting", zap.Error(err))

		conn, err = s.Connect(ctx)
		if err != nil {
			return err
		}
	}
}

func (s *Subscriber) pump(ctx context.Context, conn *websocket.Conn, handle func(broadcast.Envelope)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := broadcast.DecodeEnvelope(payload)
		if err != nil {
			s.log.Warn("dropping malformed event", zap.Error(err))
			continue
		}
		handle(env)
	}
}
