// Package config loads application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// optional `.env` files are applied to the process environment first, then the
// environment is parsed into any Go struct using field tags.
//
// # Usage
//
//	type Config struct {
//		DatabasePath string `env:"DATABASE_PATH" envDefault:"robots.json"`
//		HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg,
//		config.WithDotenv(),            // ./.env when present
//		config.WithPrefix("ROBOTWATCH_"),
//	); err != nil {
//		log.Fatal(err)
//	}
//
// Values already set in the process environment take precedence over values
// from `.env` files. Every call parses afresh, so a long-running process can
// pick up changed variables.
//
// # Error Handling
//
//   - ErrParsingConfig: env vars could not be parsed into the struct.
//   - ErrLoadingDotenv: a .env file was required but unreadable.
//   - ErrNilPointer: nil pointer passed to Load or MustLoad.
package config
