package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the service reads from the environment. A .env file
// is honored via godotenv autoload in main.
type Config struct {
	HTTP  HTTPConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	CORS  CORSConfig
}

type HTTPConfig struct {
	Port         string        `env:"PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type DBConfig struct {
	DSN             string        `env:"DB_DSN" env-required:"true"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	MigrationsDir   string        `env:"DB_MIGRATIONS_DIR" env-default:"./migrations"`
}

// RedisConfig configures the optional cache. An empty Addr disables caching
// entirely; the service runs fine without it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" env-default:""`
	Password string        `env:"REDIS_PASSWORD" env-default:""`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"60s"`
}

// AuthConfig configures the API-key check. An empty key list leaves the todo
// routes open; a non-empty list requires the header on every /todos route.
type AuthConfig struct {
	Header string   `env:"API_KEY_HEADER" env-default:"X-API-Key"`
	Keys   []string `env:"API_KEYS" env-default:""`
}

// KeySet returns the configured keys as a set for O(1) lookup.
func (a AuthConfig) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.Keys))
	for _, k := range a.Keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"https://*,http://*"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
