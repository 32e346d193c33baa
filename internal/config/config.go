// Package config loads application settings from the environment, an
// optional .env file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers understood by the database package.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the settings the application is started with.
type Config struct {
	AppPort             string
	DatabaseDriver      string
	DatabaseDSN         string
	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookie       string
	InstitutionalDomain string
	RabbitMQURL         string
	LogLevel            string
}

// SetDefaults registers the default value of every setting on v.
// SESSION_SECRET has no default and must always be provided.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "agenda.db")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "agenda_session")
	v.SetDefault("INSTITUTIONAL_DOMAIN", "fatec.sp.gov.br")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENV_FILE", ".env")
}

// Load reads the .env file named by ENV_FILE (if present) and then the
// process environment.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if err := godotenv.Load(v.GetString("ENV_FILE")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		DatabaseDriver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		SessionCookie:       v.GetString("SESSION_COOKIE"),
		InstitutionalDomain: strings.ToLower(strings.TrimPrefix(v.GetString("INSTITUTIONAL_DOMAIN"), "@")),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCookie == "" {
		return errors.New("SESSION_COOKIE is required")
	}
	if c.InstitutionalDomain == "" {
		return errors.New("INSTITUTIONAL_DOMAIN is required")
	}
	return nil
}
