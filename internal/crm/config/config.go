// Package config loads the service settings: a YAML file first, then a
// .env file, then environment variables prefixed with CRM_.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gartstein/crm/internal/crm/db"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "CRM"
	// EnvConfigPath overrides the location of the YAML file.
	EnvConfigPath = "CRM_CONFIG"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultPath is where the YAML file is looked up when CRM_CONFIG is unset.
var DefaultPath = filepath.Join("internal", "crm", "config", "config.yaml")

// Config struct for YAML configuration. Every key can be overridden by
// CRM_<KEY> or, failing that, the bare <KEY> environment variable.
type Config struct {
	Environment string `yaml:"ENVIRONMENT" envconfig:"ENVIRONMENT"`
	GRPCPort    int    `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	HTTPPort    int    `yaml:"HTTP_PORT" envconfig:"HTTP_PORT"`

	DatabaseURL      string        `yaml:"DATABASE_URL" envconfig:"DATABASE_URL"`
	DBDriver         string        `yaml:"DB_DRIVER" envconfig:"DB_DRIVER"`
	DBHost           string        `yaml:"DB_HOST" envconfig:"DB_HOST"`
	DBPort           int           `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBUser           string        `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword       string        `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName           string        `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBSSLMode        string        `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`
	DBMaxOpenConns   int           `yaml:"DB_MAX_OPEN_CONNS" envconfig:"DB_MAX_OPEN_CONNS"`
	DBConnectTimeout time.Duration `yaml:"DB_CONNECT_TIMEOUT" envconfig:"DB_CONNECT_TIMEOUT"`

	// KafkaBrokers left empty disables event publishing.
	KafkaBrokers  []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic         string   `yaml:"TOPIC" envconfig:"TOPIC"`
	ConsumerGroup string   `yaml:"CONSUMER_GROUP" envconfig:"CONSUMER_GROUP"`

	CORSOrigins      []string      `yaml:"CORS_ORIGINS" envconfig:"CORS_ORIGINS"`
	DefaultPageLimit int           `yaml:"DEFAULT_PAGE_LIMIT" envconfig:"DEFAULT_PAGE_LIMIT"`
	MaxPageLimit     int           `yaml:"MAX_PAGE_LIMIT" envconfig:"MAX_PAGE_LIMIT"`
	ShutdownTimeout  time.Duration `yaml:"SHUTDOWN_TIMEOUT" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Default returns the settings used for keys that neither the file nor
// the environment set.
func Default() *Config {
	return &Config{
		Environment:      EnvProduction,
		GRPCPort:         9090,
		HTTPPort:         8080,
		DatabaseURL:      "sqlite:///./pingcrm.db",
		DBDriver:         db.DriverPostgres,
		DBPort:           5432,
		DBSSLMode:        "disable",
		DBConnectTimeout: 30 * time.Second,
		Topic:            "crm.events",
		ConsumerGroup:    "crm-audit",
		CORSOrigins:      []string{"*"},
		DefaultPageLimit: query.DefaultLimit,
		MaxPageLimit:     query.MaxLimit,
		ShutdownTimeout:  5 * time.Second,
	}
}

// Load reads the file named by CRM_CONFIG, or DefaultPath when it exists,
// then applies .env and environment overrides.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(EnvConfigPath)
	if !explicit {
		path = DefaultPath
	}
	return load(path, explicit)
}

func load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !mustExist:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("ports must be positive: grpc=%d http=%d", c.GRPCPort, c.HTTPPort)
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("grpc and http ports must differ: %d", c.GRPCPort)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" && c.DBName == "" {
		return errors.New("either DATABASE_URL or DB_NAME is required")
	}
	if c.DefaultPageLimit < 0 || c.MaxPageLimit < 0 {
		return errors.New("page limits must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvDevelopment)
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	for _, b := range c.KafkaBrokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// Database returns the repository settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Driver:         c.DBDriver,
		URL:            c.DatabaseURL,
		Host:           c.DBHost,
		Port:           c.DBPort,
		User:           c.DBUser,
		Password:       c.DBPassword,
		DBName:         c.DBName,
		SSLMode:        c.DBSSLMode,
		MaxOpenConns:   c.DBMaxOpenConns,
		ConnectTimeout: c.DBConnectTimeout,
	}
}

// Query returns the pagination settings of list queries.
func (c *Config) Query() query.Config {
	return query.Config{
		DefaultLimit: c.DefaultPageLimit,
		MaxLimit:     c.MaxPageLimit,
	}
}
