// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the service.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Storage         string        `env:"STORAGE" envDefault:"postgres"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	DB Database `envPrefix:"DB_"`
}

// Database captures PostgreSQL connection settings.
type Database struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Name     string `env:"NAME" envDefault:"college_event"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`

	MaxConns int32 `env:"MAX_CONNS" envDefault:"20"`
	MinConns int32 `env:"MIN_CONNS" envDefault:"2"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return Config{}, fmt.Errorf("unknown STORAGE backend %q", cfg.Storage)
	}
	return cfg, nil
}
