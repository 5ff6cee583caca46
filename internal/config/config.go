package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// Shared secret the provider echoes in the x-callback-token header.
	CallbackToken  string `env:"CALLBACK_TOKEN,required"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required"`

	ProviderBaseURL  string `env:"PROVIDER_BASE_URL" envDefault:"http://mock-provider:8081"`
	ProviderAPIKey   string `env:"PROVIDER_API_KEY,required"`
	InvoiceDurationS int    `env:"INVOICE_DURATION_S" envDefault:"86400"`

	ReconcileIntervalM int `env:"RECONCILE_INTERVAL_M" envDefault:"1440"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) InvoiceDuration() time.Duration {
	return time.Duration(c.InvoiceDurationS) * time.Second
}

func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalM) * time.Minute
}
