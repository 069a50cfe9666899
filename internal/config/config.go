package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"5000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=inpstories port=5432 sslmode=disable"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"secret_key_change_me"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"720h"`

	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	RedisURL            string `env:"REDIS_URL"`
	RealtimeChannel     string `env:"REALTIME_CHANNEL" envDefault:"inpstories:realtime"`
	RealtimeClientRelay bool   `env:"REALTIME_CLIENT_RELAY" envDefault:"false"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1h"`
	CacheSize         int           `env:"CACHE_SIZE" envDefault:"500"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load(files ...string) (*Config, bool, error) {
	loaded := godotenv.Load(files...) == nil

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, loaded, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, loaded, fmt.Errorf("CACHE_SIZE must be positive, got %d", cfg.CacheSize)
	}
	return cfg, loaded, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
