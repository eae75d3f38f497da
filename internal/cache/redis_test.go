package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightdashboard/internal/domain"
)

func unreachableCache(t *testing.T) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	c := NewRedisCacheWithClient(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_Unreachable(t *testing.T) {
	c := unreachableCache(t)
	ctx := context.Background()

	flights, err := c.GetFlights(ctx)
	assert.Error(t, err)
	assert.Nil(t, flights)

	assert.Error(t, c.SetFlights(ctx, nil))
	assert.Error(t, c.InvalidateFlights(ctx))
}

func TestFlightsKey(t *testing.T) {
	assert.Equal(t, "cache:flights", flightsKey())
}

func miniCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_MissThenHit(t *testing.T) {
	c, mr := miniCache(t)
	ctx := context.Background()

	flights, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, flights)

	dep := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	want := []domain.Flight{
		{ID: 1, FlightNumber: "AA100", DepartureAirport: "JFK", ArrivalAirport: "LAX", DepartureTime: dep, ArrivalTime: dep.Add(6 * time.Hour)},
		{ID: 2, FlightNumber: "BA200", DepartureAirport: "LHR", ArrivalAirport: "JFK", DepartureTime: dep.Add(time.Hour), ArrivalTime: dep.Add(9 * time.Hour)},
	}
	require.NoError(t, c.SetFlights(ctx, want))

	got, err := c.GetFlights(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].FlightNumber, got[i].FlightNumber)
		assert.True(t, want[i].DepartureTime.Equal(got[i].DepartureTime))
		assert.True(t, want[i].ArrivalTime.Equal(got[i].ArrivalTime))
	}

	assert.Equal(t, time.Minute, mr.TTL(flightsKey()))
}

func TestRedisCache_InvalidateThenMiss(t *testing.T) {
	c, mr := miniCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetFlights(ctx, []domain.Flight{{ID: 1, FlightNumber: "AA100"}}))
	require.NoError(t, c.InvalidateFlights(ctx))

	assert.False(t, mr.Exists(flightsKey()))
	flights, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, flights)
}

func TestRedisCache_EmptyListIsHit(t *testing.T) {
	for name, list := range map[string][]domain.Flight{"empty": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			c, _ := miniCache(t)
			ctx := context.Background()

			require.NoError(t, c.SetFlights(ctx, list))

			flights, err := c.GetFlights(ctx)
			require.NoError(t, err)
			assert.NotNil(t, flights)
			assert.Empty(t, flights)
		})
	}
}

func TestRedisCache_Expires(t *testing.T) {
	c, mr := miniCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetFlights(ctx, []domain.Flight{{ID: 1}}))
	mr.FastForward(time.Minute + time.Second)

	flights, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, flights)
}

func TestRedisCache_CorruptPayload(t *testing.T) {
	c, mr := miniCache(t)
	require.NoError(t, mr.Set(flightsKey(), "not json"))

	_, err := c.GetFlights(context.Background())
	assert.Error(t, err)
}
