package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
database:
  host: db
  port: 5433
  user: flights
  password: secret
  name: flights
redis:
  addr: "redis:6379"
  flights_cache_ttl_seconds: 15
kafka:
  brokers: ["kafka:9092"]
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "/hubs/flight", cfg.HTTP.HubPath)
	assert.Equal(t, "host=db port=5433 user=flights password=secret dbname=flights sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.Redis.FlightsCacheTTL)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "flight.events", cfg.Kafka.FlightEventsTopic)
	assert.Equal(t, 64, cfg.Broadcast.ClientBuffer)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DSNFromEnv(t *testing.T) {
	path := writeConfig(t, "database:\n  host: ignored\n")
	t.Setenv(DatabaseDSNEnv, "postgres://flights@localhost:5432/flights")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://flights@localhost:5432/flights", cfg.Database.DSN())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "http: [unterminated")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
