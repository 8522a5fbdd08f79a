// README: Config loader with env defaults for HTTP, DB, Redis, and auth.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// Empty DSN selects the in-memory stores (dev mode).
		DSN string
	}
	Redis struct {
		Addr string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("REVLINE_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("REVLINE_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("REVLINE_REDIS_ADDR", "")
	cfg.Auth.JWTSecret = envOrDefault("REVLINE_JWT_SECRET", "dev-secret-change-in-production")
	cfg.Auth.TokenTTL = envOrDefaultDuration("REVLINE_TOKEN_TTL", 24*time.Hour)
	cfg.Log.Level = envOrDefault("REVLINE_LOG_LEVEL", "info")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
