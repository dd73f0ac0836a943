package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"SokoPay"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"sokopay"`
		MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	}

	Platform struct {
		FeePercent    float64 `envconfig:"PLATFORM_FEE_PERCENT" default:"5"`
		Currency      string  `envconfig:"PLATFORM_CURRENCY" default:"KES"`
		PaymentMethod string  `envconfig:"PLATFORM_PAYMENT_METHOD" default:"MPESA"`
	}

	Auth struct {
		JWTSecret  string `envconfig:"JWT_SECRET"`
		AdminToken string `envconfig:"ADMIN_TOKEN"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// PlatformFeePercent returns the current platform fee percentage. The
// environment is consulted on every call so checkout and approval each apply
// the freshest configured rate; the rate actually applied is recorded on the
// transaction.
func (c *Config) PlatformFeePercent() float64 {
	if v := os.Getenv("PLATFORM_FEE_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}

	return c.Platform.FeePercent
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
