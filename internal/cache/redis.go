package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client shared by the route cache and the lock manager.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
	routesTTL  time.Duration
}

func NewRedisCache(client redis.UniversalClient, flightsTTL, routesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
		routesTTL:  routesTTL,
	}
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.getJSON(ctx, flightsKey(page), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, page domain.PaginationParams, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(page), flights, c.flightsTTL)
}

// GetRoutes returns nil, nil on a cache miss.
func (c *RedisCache) GetRoutes(ctx context.Context, q domain.RouteQuery) (*domain.RouteSearchResult, error) {
	var result domain.RouteSearchResult
	ok, err := c.getJSON(ctx, routesKey(q), &result)
	if err != nil || !ok {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetRoutes(ctx context.Context, q domain.RouteQuery, result *domain.RouteSearchResult) error {
	return c.setJSON(ctx, routesKey(q), result, c.routesTTL)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey(page domain.PaginationParams) string {
	return fmt.Sprintf("cache:flights:%d:%d", page.Page, page.Limit)
}

func routesKey(q domain.RouteQuery) string {
	return fmt.Sprintf("cache:routes:%s:%s:%s", strings.ToUpper(q.Origin), strings.ToUpper(q.Destination), q.DepartureDate)
}
