package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"

	LockDriverRedis  = "redis"
	LockDriverMemory = "memory"

	LockStrategyPerBooking = "per-booking"
	LockStrategyGlobal     = "global"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Lock     LockConfig     `yaml:"lock"`
	Search   SearchConfig   `yaml:"search"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	ShutdownSeconds     int    `yaml:"shutdown_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	// URL, when set, wins over the individual connection fields.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishAttempts    int      `yaml:"publish_attempts"`
}

type LockConfig struct {
	Driver    string `yaml:"driver"`
	Strategy  string `yaml:"strategy"`
	TTLMillis int    `yaml:"ttl_ms"`
	Attempts  int    `yaml:"attempts"`
	BackoffMs int    `yaml:"backoff_ms"`
}

func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLMillis) * time.Millisecond
}

func (l LockConfig) Backoff() time.Duration {
	return time.Duration(l.BackoffMs) * time.Millisecond
}

type SearchConfig struct {
	DirectLimit     int     `yaml:"direct_limit"`
	LegLimit        int     `yaml:"leg_limit"`
	TransitLimit    int     `yaml:"transit_limit"`
	MinLayoverHours float64 `yaml:"min_layover_hours"`
	MaxLayoverHours float64 `yaml:"max_layover_hours"`
	RoutesCacheTTL  int     `yaml:"routes_cache_ttl_seconds"`
	FlightsCacheTTL int     `yaml:"flights_cache_ttl_seconds"`
}

type BookingConfig struct {
	DefaultListLimit int `yaml:"default_list_limit"`
	MaxListLimit     int `yaml:"max_list_limit"`
}

type WorkerConfig struct {
	HealthCheckSeconds int `yaml:"health_check_seconds"`
	AlertPruneMinutes  int `yaml:"alert_prune_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default filled in, pointing at local services.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	setString(&c.HTTP.Address, ":8080")
	setInt(&c.HTTP.ReadTimeoutSeconds, 10)
	setInt(&c.HTTP.WriteTimeoutSeconds, 10)
	setInt(&c.HTTP.ShutdownSeconds, 5)

	setString(&c.Log.Level, "info")
	setString(&c.Log.Format, "json")

	setString(&c.Storage.Driver, StorageDriverPostgres)
	setString(&c.Database.Host, "localhost")
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setString(&c.Mongo.URI, "mongodb://localhost:27017")
	setString(&c.Mongo.Database, "cargoapp")
	setString(&c.Redis.Addr, "localhost:6379")
	setString(&c.Kafka.BookingEventsTopic, "booking-events")
	setString(&c.Kafka.GroupID, "cargo-monitor")
	setInt(&c.Kafka.PublishAttempts, 3)

	setString(&c.Lock.Driver, LockDriverRedis)
	setString(&c.Lock.Strategy, LockStrategyPerBooking)
	setInt(&c.Lock.TTLMillis, 10000)
	setInt(&c.Lock.Attempts, 1)
	setInt(&c.Lock.BackoffMs, 50)

	setInt(&c.Search.DirectLimit, 20)
	setInt(&c.Search.LegLimit, 50)
	setInt(&c.Search.TransitLimit, 5)
	if c.Search.MinLayoverHours == 0 {
		c.Search.MinLayoverHours = 2
	}
	if c.Search.MaxLayoverHours == 0 {
		c.Search.MaxLayoverHours = 8
	}
	setInt(&c.Search.RoutesCacheTTL, 180)
	setInt(&c.Search.FlightsCacheTTL, 300)

	setInt(&c.Booking.DefaultListLimit, 20)
	setInt(&c.Booking.MaxListLimit, 100)

	setInt(&c.Worker.HealthCheckSeconds, 30)
	setInt(&c.Worker.AlertPruneMinutes, 60)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMongo:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMongo, c.Storage.Driver))
	}
	switch c.Lock.Driver {
	case LockDriverRedis, LockDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("lock.driver must be %q or %q, got %q", LockDriverRedis, LockDriverMemory, c.Lock.Driver))
	}
	switch c.Lock.Strategy {
	case LockStrategyPerBooking, LockStrategyGlobal:
	default:
		errs = append(errs, fmt.Errorf("lock.strategy must be %q or %q, got %q", LockStrategyPerBooking, LockStrategyGlobal, c.Lock.Strategy))
	}
	if c.Lock.TTLMillis <= 0 {
		errs = append(errs, errors.New("lock.ttl_ms must be positive"))
	}
	if c.Search.MinLayoverHours > c.Search.MaxLayoverHours {
		errs = append(errs, errors.New("search.min_layover_hours must not exceed max_layover_hours"))
	}
	if c.Booking.DefaultListLimit < 1 || c.Booking.MaxListLimit < 1 {
		errs = append(errs, errors.New("booking.default_list_limit and max_list_limit must be positive"))
	}
	if c.Booking.DefaultListLimit > c.Booking.MaxListLimit {
		errs = append(errs, errors.New("booking.default_list_limit must not exceed max_list_limit"))
	}
	if c.Kafka.PublishAttempts < 1 {
		errs = append(errs, errors.New("kafka.publish_attempts must be positive"))
	}
	if c.Worker.HealthCheckSeconds <= 0 {
		errs = append(errs, errors.New("worker.health_check_seconds must be positive"))
	}
	if c.Worker.AlertPruneMinutes <= 0 {
		errs = append(errs, errors.New("worker.alert_prune_minutes must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
