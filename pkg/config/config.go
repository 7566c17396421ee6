// Package config loads the ClawdSign server configuration.
//
// Configuration is layered: built-in defaults, then an optional TOML file,
// then environment variables. A minimal file looks like:
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "postgres"
//	postgres_url = "postgres://clawdsign@localhost/clawdsign"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	stats_ttl = "60s"
//
// Unknown keys in the file are rejected so that typos surface at startup.
package config

import (
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clawdsign/pkg/errors"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Duration is a time.Duration that decodes from strings like "60s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	PostgresURL   string `toml:"postgres_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	Migrate       bool   `toml:"migrate"` // create tables/indexes on startup
}

// CacheConfig selects the shared cache used for aggregate statistics.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	StatsTTL      Duration `toml:"stats_ttl"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file or environment is given:
// an in-memory store and cache listening on :8080.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{10 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			MaxBodyBytes:    64 << 10,
		},
		Store: StoreConfig{
			Backend:       StoreMemory,
			MongoDatabase: "clawdsign",
		},
		Cache: CacheConfig{
			Backend:  CacheMemory,
			StatsTTL: Duration{60 * time.Second},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration from path (optional) and the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup, for tests.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	set(&c.Server.Addr, "CLAWDSIGN_ADDR")
	set(&c.Store.Backend, "CLAWDSIGN_STORE")
	set(&c.Store.PostgresURL, "CLAWDSIGN_DATABASE_URL", "DATABASE_URL")
	set(&c.Store.MongoURI, "CLAWDSIGN_MONGO_URI", "MONGO_URI")
	set(&c.Store.MongoDatabase, "CLAWDSIGN_MONGO_DATABASE")
	set(&c.Cache.Backend, "CLAWDSIGN_CACHE")
	set(&c.Cache.RedisAddr, "CLAWDSIGN_REDIS_ADDR", "REDIS_ADDR")
	set(&c.Cache.RedisPassword, "CLAWDSIGN_REDIS_PASSWORD", "REDIS_PASSWORD")
	set(&c.Log.Level, "CLAWDSIGN_LOG_LEVEL")

	if v := getenv("CLAWDSIGN_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "CLAWDSIGN_REDIS_DB")
		}
		c.Cache.RedisDB = db
	}
	if v := getenv("CLAWDSIGN_MIGRATE"); v != "" {
		m, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "CLAWDSIGN_MIGRATE")
		}
		c.Store.Migrate = m
	}
	return nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.postgres_url is required for the postgres backend")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
		if c.Store.MongoDatabase == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_database cannot be empty")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown log level %q", c.Log.Level)
	}
	return nil
}
