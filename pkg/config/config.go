package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"yume-basket"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort    string `envconfig:"GRPC_PORT" default:"50052"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	CatalogDBPath string `envconfig:"CATALOG_DB_PATH" default:":memory:"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""` // empty disables the menu cache
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	MenuCacheTTL  time.Duration `envconfig:"MENU_CACHE_TTL" default:"15m"`

	SessionTTL             time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionCleanupInterval time.Duration `envconfig:"SESSION_CLEANUP_INTERVAL" default:"1m"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
