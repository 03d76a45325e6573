package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures a single Load call.
type Option func(*options)

type options struct {
	dotenv   []string
	required bool
	prefix   string
}

// WithDotenv loads the given .env files before parsing. Variables already
// present in the process environment win. Missing files are skipped unless
// WithRequiredDotenv is also given. With no arguments the default ".env" in
// the working directory is used.
func WithDotenv(files ...string) Option {
	return func(o *options) {
		if len(files) == 0 {
			files = []string{".env"}
		}
		o.dotenv = append(o.dotenv, files...)
	}
}

// WithRequiredDotenv makes a missing .env file a load error.
func WithRequiredDotenv() Option {
	return func(o *options) { o.required = true }
}

// WithPrefix prepends prefix to every env tag, e.g. "ROBOTWATCH_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load parses environment variables into the struct pointed to by v using
// `env` and `envDefault` field tags.
//
// Example:
//
//	type Config struct {
//		DatabasePath   string        `env:"DATABASE_PATH" envDefault:"robots.json"`
//		ReloadInterval time.Duration `env:"RELOAD_INTERVAL" envDefault:"5m"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithDotenv(), config.WithPrefix("ROBOTWATCH_")); err != nil {
//		// handle error
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	for _, file := range o.dotenv {
		if err := godotenv.Load(file); err != nil {
			if o.required {
				return errors.Join(ErrLoadingDotenv, fmt.Errorf("%s: %w", file, err))
			}
		}
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
