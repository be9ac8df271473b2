package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Panel PanelConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// PanelConfig holds the admin panel settings.
type PanelConfig struct {
	RemoteURL string `env:"REMOTE_URL, default=http://localhost:3001"`
	// StoreBackend selects the local fallback store: "redis" or "memory".
	StoreBackend    string        `env:"STORE_BACKEND,     default=redis"`
	SeedFile        string        `env:"SEED_FILE"`
	AdminOnly       bool          `env:"ADMIN_ONLY,        default=true"`
	AssignToCreator bool          `env:"ASSIGN_TO_CREATOR, default=false"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,     default=30s"`
	DashboardMaxAge time.Duration `env:"DASHBOARD_MAX_AGE, default=10s"`
	// CookieHashKey signs the user cookie. A random key is used when empty.
	CookieHashKey  string        `env:"COOKIE_HASH_KEY"`
	CookieSecure   bool          `env:"COOKIE_SECURE,    default=false"`
	ChannelDelay   time.Duration `env:"CHANNEL_DELAY,    default=500ms"`
	ChannelWorkers int           `env:"CHANNEL_WORKERS,  default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskpanel"`
	// Seed fills empty collections with the demo users and tasks.
	Seed bool `env:"MONGO_SEED, default=true"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the process runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
// Variables in a .env file in the working directory are applied first
// without overriding ones already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Panel.StoreBackend != "redis" && cfg.Panel.StoreBackend != "memory" {
		return nil, fmt.Errorf("STORE_BACKEND must be redis or memory, got %q", cfg.Panel.StoreBackend)
	}
	return &cfg, nil
}
