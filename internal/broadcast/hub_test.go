package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/flightdashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, buffer int) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(buffer, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub, cancel
}

func receive(t *testing.T, sub *Subscriber) Envelope {
	t.Helper()
	select {
	case payload, ok := <-sub.Send():
		require.True(t, ok, "subscriber channel closed")
		env, err := DecodeEnvelope(payload)
		require.NoError(t, err)
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Envelope{}
	}
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub, _ := startHub(t, 8)
	ctx := context.Background()

	a, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	b, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, NewFlightDeleted("7")))

	for _, sub := range []*Subscriber{a, b} {
		env := receive(t, sub)
		assert.Equal(t, FlightDeleted, env.Kind)
		id, err := env.ID()
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	}
}

func TestHub_PreservesPublishOrder(t *testing.T) {
	hub, _ := startHub(t, 32)
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		require.NoError(t, hub.Publish(ctx, NewFlightDeleted(fmt.Sprint(i))))
	}

	for i := int64(1); i <= 10; i++ {
		id, err := receive(t, sub).ID()
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
}

func TestHub_UnsubscribedMissesEvents(t *testing.T) {
	hub, _ := startHub(t, 8)
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	require.NoError(t, hub.Publish(ctx, NewFlightDeleted("1")))

	_, ok := <-sub.Send()
	assert.False(t, ok)
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub, _ := startHub(t, 1)
	ctx := context.Background()

	slow, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, NewFlightDeleted("1")))
	require.NoError(t, hub.Publish(ctx, NewFlightDeleted("2")))

	id, err := receive(t, slow).ID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, ok := <-slow.Send()
	assert.False(t, ok, "slow subscriber should have been dropped")
}

func TestHub_Stopped(t *testing.T) {
	hub, cancel := startHub(t, 1)
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	_, ok := <-sub.Send()
	assert.False(t, ok)

	assert.ErrorIs(t, hub.Publish(ctx, NewFlightDeleted("1")), ErrHubClosed)
	_, err = hub.Subscribe(ctx)
	assert.ErrorIs(t, err, ErrHubClosed)
	hub.Unsubscribe(sub)
}

func TestEvent_WireFormat(t *testing.T) {
	dep := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	view := domain.FlightView{
		Flight: domain.Flight{ID: 3, FlightNumber: "AA100", DepartureAirport: "JFK", ArrivalAirport: "LAX", DepartureTime: dep, ArrivalTime: dep.Add(6 * time.Hour)},
		Status: domain.FlightStatusBoarding,
	}

	payload, err := json.Marshal(NewFlightAdded(view))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"FlightAdded","data":{"id":3,"flightNumber":"AA100","departureAirport":"JFK","arrivalAirport":"LAX","departureTime":"2025-03-01T12:00:00Z","arrivalTime":"2025-03-01T18:00:00Z","status":"Boarding"}}`, string(payload))

	env, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	got, err := env.View()
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestEnvelope_ID(t *testing.T) {
	tests := []struct {
		data    string
		want    int64
		wantErr bool
	}{
		{`"12"`, 12, false},
		{`12`, 12, false},
		{`"abc"`, 0, true},
		{`1.5`, 0, true},
		{`"1.5"`, 0, true},
		{`3e0`, 3, false},
		{`{"id":1}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			id, err := Envelope{Kind: FlightDeleted, Data: json.RawMessage(tt.data)}.ID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestFanout_SecondaryFailureIsSwallowed(t *testing.T) {
	primary := &MockPublisher{}
	relay := &MockPublisher{}
	ctx := context.Background()
	event := NewFlightDeleted("5")

	primary.On("Publish", ctx, event).Return(nil).Once()
	relay.On("Publish", ctx, event).Return(errors.New("broker down")).Once()

	err := NewFanout(nil, primary, relay).Publish(ctx, event)

	assert.NoError(t, err)
	primary.AssertExpectations(t)
	relay.AssertExpectations(t)
}

func TestFanout_PrimaryFailureIsReturned(t *testing.T) {
	primary := &MockPublisher{}
	ctx := context.Background()
	event := NewFlightDeleted("5")

	primary.On("Publish", ctx, event).Return(ErrHubClosed).Once()

	err := NewFanout(nil, primary).Publish(ctx, event)

	assert.ErrorIs(t, err, ErrHubClosed)
}
