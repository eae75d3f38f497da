package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseDSNEnv overrides the database location from the config file.
const DatabaseDSNEnv = "FLIGHTS_DATABASE_DSN"

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Log       LogConfig       `yaml:"log"`
	Viewer    ViewerConfig    `yaml:"viewer"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
	HubPath string `yaml:"hub_path"`
}

type DatabaseConfig struct {
	DSNOverride string `yaml:"dsn"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures the flight list cache. An empty Addr disables it.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	FlightsCacheTTL int    `yaml:"flights_cache_ttl_seconds"`
}

// KafkaConfig configures the event relay. No brokers means no relay.
type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	FlightEventsTopic string   `yaml:"flight_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

type BroadcastConfig struct {
	ClientBuffer     int `yaml:"client_buffer"`
	WriteWaitSeconds int `yaml:"write_wait_seconds"`
	PongWaitSeconds  int `yaml:"pong_wait_seconds"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type ViewerConfig struct {
	APIBase             string `yaml:"api_base"`
	HubURL              string `yaml:"hub_url"`
	ReconnectMinSeconds int    `yaml:"reconnect_min_seconds"`
	ReconnectMaxSeconds int    `yaml:"reconnect_max_seconds"`
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

	if dsn := os.Getenv(DatabaseDSNEnv); dsn != "" {
		cfg.Database.DSNOverride = dsn
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.HubPath == "" {
		c.HTTP.HubPath = "/hubs/flight"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.FlightsCacheTTL == 0 {
		c.Redis.FlightsCacheTTL = 30
	}
	if c.Kafka.FlightEventsTopic == "" {
		c.Kafka.FlightEventsTopic = "flight.events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flight-notifier"
	}
	if c.Broadcast.ClientBuffer == 0 {
		c.Broadcast.ClientBuffer = 64
	}
	if c.Broadcast.WriteWaitSeconds == 0 {
		c.Broadcast.WriteWaitSeconds = 10
	}
	if c.Broadcast.PongWaitSeconds == 0 {
		c.Broadcast.PongWaitSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Viewer.APIBase == "" {
		c.Viewer.APIBase = "http://localhost:8080/api/flights"
	}
	if c.Viewer.HubURL == "" {
		c.Viewer.HubURL = "ws://localhost:8080/hubs/flight"
	}
	if c.Viewer.ReconnectMinSeconds == 0 {
		c.Viewer.ReconnectMinSeconds = 1
	}
	if c.Viewer.ReconnectMaxSeconds == 0 {
		c.Viewer.ReconnectMaxSeconds = 30
	}
}
