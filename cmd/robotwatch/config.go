package main

import (
	"time"

	"github.com/dmitrymomot/robotwatch/pkg/config"
	"github.com/dmitrymomot/robotwatch/pkg/file"
	"github.com/dmitrymomot/robotwatch/pkg/filter"
	"github.com/dmitrymomot/robotwatch/pkg/httpserver"
	"github.com/dmitrymomot/robotwatch/pkg/ratelimiter"
	"github.com/dmitrymomot/robotwatch/pkg/redis"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

const envPrefix = "ROBOTWATCH_"

// Source kinds.
const (
	sourceLocal  = "local"
	sourceRemote = "remote"
)

// Cache kinds for remote lookups.
const (
	cacheNone   = "none"
	cacheMemory = "memory"
	cacheRedis  = "redis"
)

// Config is read from ROBOTWATCH_* variables, optionally seeded from .env.
type Config struct {
	Env       string `env:"ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"` // json or text; empty follows ENV

	Source string `env:"SOURCE" envDefault:"local"` // local or remote

	// Local source.
	Database       string        `env:"DATABASE" envDefault:"robots.json"` // path or s3://bucket/key
	ReloadInterval time.Duration `env:"RELOAD_INTERVAL" envDefault:"5m"`
	RobotURLBase   string        `env:"ROBOT_URL_BASE"`
	GeoIPCountry   string        `env:"GEOIP_COUNTRY_DB"`
	GeoIPASN       string        `env:"GEOIP_ASN_DB"`

	// Remote source.
	RemoteBaseURL string        `env:"REMOTE_BASE_URL"`
	RemoteAPIKey  string        `env:"REMOTE_API_KEY"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"10s"`
	Cache         string        `env:"CACHE" envDefault:"memory"` // none, memory or redis
	CacheSize     int           `env:"CACHE_SIZE" envDefault:"10000"`

	// API keys accepted by serve. Empty leaves the API open.
	APIKeys []string `env:"API_KEYS" envSeparator:","`

	// Proxy headers trusted for the caller address, highest priority first.
	ClientIPHeaders []string `env:"CLIENT_IP_HEADERS" envSeparator:","`

	HTTP      httpserver.Config
	RateLimit ratelimiter.Config
	Redis     redis.Config
	S3        file.S3Config
	Filter    filter.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	err := config.Load(&cfg, config.WithPrefix(envPrefix), config.WithDotenv())
	if cfg.RobotURLBase == "" {
		cfg.RobotURLBase = robots.DefaultRobotURLBase
	}
	return cfg, err
}
