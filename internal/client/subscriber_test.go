package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
)

// flakyHub sends one event per connection and then hangs up.
func flakyHub(t *testing.T, dials *atomic.Int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		if n == 2 {
			// Second attempt is refused so the subscriber has to back off.
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(broadcast.NewFlightDeleted(strings.Repeat("1", int(n))))
	}))
}

func TestSubscriber_ReconnectsWithoutReplay(t *testing.T) {
	var dials atomic.Int32
	srv := flakyHub(t, &dials)
	t.Cleanup(srv.Close)

	sub := NewSubscriber("ws"+strings.TrimPrefix(srv.URL, "http"), 5*time.Millisecond, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := sub.Connect(ctx)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		ids []int64
	)
	done := make(chan error, 1)
	go func() {
		done <- sub.Run(ctx, conn, func(env broadcast.Envelope) {
			id, err := env.ID()
			if err != nil {
				return
			}
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ids) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 111}, ids[:2])
	assert.GreaterOrEqual(t, dials.Load(), int32(3))
}

func TestSubscriber_ConnectHonoursContext(t *testing.T) {
	sub := NewSubscriber("ws://127.0.0.1:1/hubs/flight", time.Millisecond, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := sub.Connect(ctx)
	assert.Error(t, err)
}
