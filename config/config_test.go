package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "http:\n  address: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, LockStrategyPerBooking, cfg.Lock.Strategy)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL())
	assert.Equal(t, 1, cfg.Lock.Attempts)
	assert.Equal(t, 2.0, cfg.Search.MinLayoverHours)
	assert.Equal(t, 8.0, cfg.Search.MaxLayoverHours)
	assert.Equal(t, 5, cfg.Search.TransitLimit)
	assert.Equal(t, 180, cfg.Search.RoutesCacheTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	body := `
storage:
  driver: mongo
mongo:
  uri: mongodb://mongo:27017
  database: cargo
lock:
  driver: memory
  strategy: global
  ttl_ms: 2500
  attempts: 3
database:
  host: db
  port: 6432
  user: cargo
  password: secret
  name: cargo
  ssl_mode: require
`
	cfg, err := LoadConfig(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "cargo", cfg.Mongo.Database)
	assert.Equal(t, LockStrategyGlobal, cfg.Lock.Strategy)
	assert.Equal(t, 2500*time.Millisecond, cfg.Lock.TTL())
	assert.Equal(t, 3, cfg.Lock.Attempts)
	assert.Equal(t, "host=db port=6432 user=cargo password=secret dbname=cargo sslmode=require", cfg.Database.DSN())
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "storage:\n  driver: sqlite\nlock:\n  strategy: per-flight\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "lock.strategy")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestDatabaseConfig_URLWins(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://cargo@db/cargo", Host: "ignored", Port: 5432}
	assert.Equal(t, "postgres://cargo@db/cargo", d.DSN())
}

func TestLoadConfig_RejectsNonPositiveIntervals(t *testing.T) {
	body := `
worker:
  health_check_seconds: -5
  alert_prune_minutes: -1
booking:
  default_list_limit: -10
kafka:
  publish_attempts: -2
`
	_, err := LoadConfig(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker.health_check_seconds")
	assert.Contains(t, err.Error(), "worker.alert_prune_minutes")
	assert.Contains(t, err.Error(), "booking.default_list_limit")
	assert.Contains(t, err.Error(), "kafka.publish_attempts")
}

func TestLoadConfig_ListLimitsAndPublishAttempts(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "booking:\n  default_list_limit: 15\n  max_list_limit: 40\n"))
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Booking.DefaultListLimit)
	assert.Equal(t, 40, cfg.Booking.MaxListLimit)
	assert.Equal(t, 3, cfg.Kafka.PublishAttempts)
}
