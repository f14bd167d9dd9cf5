package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all service configuration, read from the environment.
type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string         `env:"DATABASE_URL,required"`
	Database    DatabaseConfig `envPrefix:"DB_"`

	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	Casdoor CasdoorConfig `envPrefix:"CASDOOR_"`
	Events  EventsConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// DatabaseConfig tunes the sql.DB pool
type DatabaseConfig struct {
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

// CasdoorConfig holds the identity provider settings used for token verification
type CasdoorConfig struct {
	Endpoint     string `env:"ENDPOINT"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Cert         string `env:"CERT"`
	Organization string `env:"ORGANIZATION"`
	Application  string `env:"APPLICATION"`
}

// EventsConfig selects the record event transport. Kafka is used when
// brokers are set, otherwise events stay in-process.
type EventsConfig struct {
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic         string   `env:"EVENTS_TOPIC" envDefault:"curio.records"`
	ConsumerGroup string   `env:"EVENTS_CONSUMER_GROUP" envDefault:"profile-service"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return parse(env.Options{})
}

// LoadConfigFromMap parses configuration from vars instead of the process environment.
func LoadConfigFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}
