package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, 5*time.Minute, 3*time.Minute), mr
}

func TestRedisCache_RoutesMissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	q := domain.RouteQuery{Origin: "del", Destination: "blr", DepartureDate: "2026-03-10"}

	got, err := c.GetRoutes(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, got)

	dep := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	result := &domain.RouteSearchResult{
		DirectFlights: []domain.Flight{{FlightID: "AI101-0", Origin: "DEL", Destination: "BLR", DepartureDateTime: dep, ArrivalDateTime: dep.Add(150 * time.Minute)}},
		TransitRoutes: []domain.TransitRoute{},
		SearchParams:  q,
	}
	require.NoError(t, c.SetRoutes(ctx, q, result))

	got, err = c.GetRoutes(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.DirectFlights, 1)
	assert.Equal(t, "AI101-0", got.DirectFlights[0].FlightID)
	assert.True(t, dep.Equal(got.DirectFlights[0].DepartureDateTime))

	assert.Equal(t, 3*time.Minute, mr.TTL("cache:routes:DEL:BLR:2026-03-10"))
}

func TestRedisCache_FlightsKeyedByPage(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	first := domain.PaginationParams{Page: 1, Limit: 20}
	second := domain.PaginationParams{Page: 2, Limit: 20}

	require.NoError(t, c.SetFlights(ctx, first, []domain.Flight{{FlightID: "SG202-0"}}))

	got, err := c.GetFlights(ctx, first)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = c.GetFlights(ctx, second)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_Ping(t *testing.T) {
	c, mr := newTestCache(t)
	assert.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
