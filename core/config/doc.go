// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// The package loads .env files on first use and parses environment
// variables into struct fields via the caarlos0/env library:
//
//	type ServerConfig struct {
//		Addr    string        `env:"SERVER_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"SERVER_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// Each configuration type is loaded once per application lifetime; later
// loads of the same type return the cached value.
package config
