package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/cache"
	"github.com/Domenick1991/aircargo/internal/lock"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Stores holds the repositories selected by storage.driver together with the
// handle needed to close them.
type Stores struct {
	Bookings repository.BookingRepository
	Flights  repository.FlightRepository
	close    func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMongo:
		client, err := repository.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("connected to mongo", "database", cfg.Mongo.Database)
		return &Stores{
			Bookings: repository.NewMongoBookingRepository(client, db),
			Flights:  repository.NewMongoFlightRepository(db),
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		log.Info("connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &Stores{
			Bookings: repository.NewBookingRepository(pool),
			Flights:  repository.NewFlightRepository(pool),
			close:    pool.Close,
		}, nil
	}
}

// Locking bundles the lock manager with the optional Redis client behind it.
type Locking struct {
	Locker lock.Locker
	Redis  *redis.Client
}

// OpenLocking returns a Redis-backed locker, or an in-process one when
// lock.driver is memory. The Redis client is shared with the route cache.
func OpenLocking(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Locking, error) {
	if cfg.Lock.Driver == config.LockDriverMemory {
		log.Warn("using in-process locks; bookings are only serialized within this instance")
		return &Locking{Locker: lock.NewMemoryLocker()}, nil
	}

	client := cache.NewRedisClient(cfg.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("connected to redis", "addr", cfg.Redis.Addr)
	return &Locking{Locker: lock.NewRedisLocker(client, log), Redis: client}, nil
}

func (l *Locking) Close() {
	if l.Redis != nil {
		_ = l.Redis.Close()
	}
}
