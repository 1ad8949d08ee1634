package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceEnvironment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	ServiceAPIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`

	// PublicBaseURL is the externally reachable origin used when generating
	// the embeddable script tag.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	DatabaseURL          string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxOpenConns       int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns       int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetimeSec int    `envconfig:"DB_CONN_MAX_LIFETIME_SEC" default:"300"`

	// RedisAddr is optional; when empty the project cache degrades to a no-op.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	DedupWindowSec  int `envconfig:"DEDUP_WINDOW_SEC" default:"300"`
	RealtimeTickSec int `envconfig:"REALTIME_TICK_SEC" default:"5"`

	GeoLookupEnabled    bool   `envconfig:"GEO_LOOKUP_ENABLED" default:"true"`
	GeoLookupBaseURL    string `envconfig:"GEO_LOOKUP_BASE_URL" default:"http://ip-api.com"`
	GeoLookupTimeoutSec int    `envconfig:"GEO_LOOKUP_TIMEOUT_SEC" default:"3"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.DedupWindowSec) * time.Second
}

func (c *Config) RealtimeTick() time.Duration {
	return time.Duration(c.RealtimeTickSec) * time.Second
}

func (c *Config) GeoLookupTimeout() time.Duration {
	return time.Duration(c.GeoLookupTimeoutSec) * time.Second
}
