package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries all environment-driven settings
type Config struct {
	DatabaseDSN string        `env:"DB_DSN"`
	ListenAddr  string        `env:"LISTEN_ADDR" envDefault:":8080"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	JWTIssuer   string        `env:"JWT_ISS" envDefault:"atlas-asset-api"`
	JWTAudience string        `env:"JWT_AUD" envDefault:"atlas-asset-api"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	EnableMetrics bool `env:"ENABLE_METRICS"`
	EnableSwagger bool `env:"ENABLE_SWAGGER"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidate parses configuration and checks required settings
func LoadAndValidate() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DB_DSN environment variable is required")
	}
	if cfg.JWTExpiry <= 0 {
		return nil, errors.New("JWT_EXPIRY must be positive")
	}
	return cfg, nil
}
