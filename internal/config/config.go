package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	CatalogBuiltin  = "builtin"
	CatalogYAML     = "yaml"
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"

	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config holds every setting of the service, read from the environment.
type Config struct {
	Environment        string        `envconfig:"ENVIRONMENT" default:"development"`
	HTTPPort           string        `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort           string        `envconfig:"GRPC_PORT" default:"50057"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxRequestBodySize int64         `envconfig:"MAX_REQUEST_BODY_SIZE" default:"1048576"`
	DeliveryDays       int           `envconfig:"DELIVERY_DAYS" default:"3"`
	CartStore          string        `envconfig:"CART_STORE" default:"memory"`

	Catalog CatalogConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	Events  EventsConfig
}

type CatalogConfig struct {
	Source      string `default:"builtin"`
	File        string
	DBPath      string `split_words:"true"`
	PostgresDSN string `split_words:"true"`
}

type RedisConfig struct {
	URL          string        `default:"redis://localhost:6379/0"`
	ReadTimeout  time.Duration `split_words:"true" default:"3s"`
	WriteTimeout time.Duration `split_words:"true" default:"3s"`
	DialTimeout  time.Duration `split_words:"true" default:"5s"`
	CartTTL      time.Duration `split_words:"true"`
}

type MongoConfig struct {
	URI    string `default:"mongodb://localhost:27017"`
	DBName string `split_words:"true" default:"cartdb"`
}

// EventsConfig configures order event publishing. No brokers disables it.
type EventsConfig struct {
	Brokers   []string
	Topic     string `default:"order-placed"`
	QueueSize int    `split_words:"true" default:"256"`
}

// Load reads envFile (if present) into the environment and processes Config from it.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogBuiltin:
	case CatalogYAML:
		if c.Catalog.File == "" {
			return errors.New("CATALOG_FILE is required when CATALOG_SOURCE=yaml")
		}
	case CatalogSQLite:
		if c.Catalog.DBPath == "" {
			return errors.New("CATALOG_DB_PATH is required when CATALOG_SOURCE=sqlite")
		}
	case CatalogPostgres:
		if c.Catalog.PostgresDSN == "" {
			return errors.New("CATALOG_POSTGRES_DSN is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	switch c.CartStore {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required when CART_STORE=redis")
		}
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.DBName == "" {
			return errors.New("MONGO_URI and MONGO_DB_NAME are required when CART_STORE=mongo")
		}
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.CartStore)
	}

	if c.DeliveryDays < 0 {
		return fmt.Errorf("DELIVERY_DAYS must not be negative, got %d", c.DeliveryDays)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive, got %d", c.MaxRequestBodySize)
	}
	return nil
}

// EventsEnabled reports whether order events should be sent to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.Events.Brokers) > 0
}
