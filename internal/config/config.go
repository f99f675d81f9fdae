package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendRedis    Backend = "redis"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Contas"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:8100"`
	}

	Storage struct {
		Backend   Backend `envconfig:"STORAGE_BACKEND" default:"sqlite"`
		LedgerKey string  `envconfig:"LEDGER_KEY" default:"contas"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"contas"`
	}

	SQLite struct {
		Path string `envconfig:"SQLITE_PATH" default:"./data/contas.db"`
	}

	Redis struct {
		Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password    string        `envconfig:"REDIS_PASSWORD" default:""`
		DB          int           `envconfig:"REDIS_DB" default:"0"`
		Prefix      string        `envconfig:"REDIS_PREFIX" default:"contas:"`
		DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
		Timeout     time.Duration `envconfig:"REDIS_TIMEOUT" default:"3s"`
	}

	Auth struct {
		Secret    string        `envconfig:"JWT_SECRET" default:""`
		TTL       time.Duration `envconfig:"JWT_TTL" default:"24h"`
		DevIssuer bool          `envconfig:"AUTH_DEV_ISSUER" default:"false"`
	}

	TUI struct {
		UserID  string `envconfig:"TUI_USER_ID" default:""`
		LogFile string `envconfig:"TUI_LOG_FILE" default:""`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate reports settings that would only fail later at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("invalid storage backend %q", c.Storage.Backend)
	}

	if c.Storage.LedgerKey == "" {
		return fmt.Errorf("ledger key cannot be empty")
	}

	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.App.Port)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
