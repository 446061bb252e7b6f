package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Bursar"`
		Env      string `envconfig:"APP_ENV" default:"development"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"bursar"`
		Driver   string `envconfig:"STORE_DRIVER" default:"postgres"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		Secret string        `envconfig:"JWT_SECRET"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
		Issuer string        `envconfig:"JWT_ISSUER" default:"bursar"`
	}

	Redis struct {
		Addr        string        `envconfig:"REDIS_ADDR"`
		Password    string        `envconfig:"REDIS_PASSWORD"`
		DB          int           `envconfig:"REDIS_DB" default:"0"`
		LoginLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
		LoginWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`
		KeyPrefix   string        `envconfig:"REDIS_KEY_PREFIX" default:"bursar:rate_limit"`
	}

	RabbitMQ struct {
		URL      string `envconfig:"RABBITMQ_URL"`
		Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"bursar.events"`
	}

	Payment struct {
		BaseURL string        `envconfig:"PAYMENT_BASE_URL"`
		Token   string        `envconfig:"PAYMENT_TOKEN"`
		Timeout time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"15s"`
	}

	Catalog struct {
		SeedFile string `envconfig:"CATALOG_SEED_FILE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// LogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// devSecret signs tokens outside production when JWT_SECRET is unset.
const devSecret = "bursar-development-secret"

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.DB.Driver)
	}

	if cfg.Auth.Secret == "" {
		if cfg.Production() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}

		cfg.Auth.Secret = devSecret
	}

	return &cfg, nil
}
