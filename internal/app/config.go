package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/gl-engine/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppRateLimit      int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PGDSN            string `envconfig:"PG_DSN"`
	DBMigrateOnStart bool   `envconfig:"DB_MIGRATE_ON_START" default:"true"`
	COASeedOnStart   bool   `envconfig:"COA_SEED_ON_START" default:"true"`
	DBMaxConns       int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	LedgerSyncAlertThreshold int           `envconfig:"LEDGER_SYNC_ALERT_THRESHOLD" default:"3"`
	LedgerSyncAlertWindow    time.Duration `envconfig:"LEDGER_SYNC_ALERT_WINDOW" default:"300s"`

	IntegritySnapshotTTL time.Duration `envconfig:"INTEGRITY_SNAPSHOT_TTL" default:"2160h"`
	IntegrityCron        string        `envconfig:"INTEGRITY_CRON" default:"30 1 * * *"`
	LedgerRebuildCron    string        `envconfig:"LEDGER_REBUILD_CRON" default:"0 3 * * 0"`
}

// LoadConfig reads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.LedgerSyncAlertThreshold <= 0 {
		return nil, errors.New("ledger sync alert threshold must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RedisOptions returns the Redis connection settings.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// InMemory reports whether the process runs without Postgres.
func (c *Config) InMemory() bool {
	return c == nil || c.PGDSN == ""
}
