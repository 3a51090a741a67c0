// Package config defines the top-level configuration for the lumidex engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by LUMIDEX_* environment
// variables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Rules    RulesConfig    `toml:"rules"`
	Resolver ResolverConfig `toml:"resolver"`
	Pricing  PricingConfig  `toml:"pricing"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters and cache TTLs.
type RedisConfig struct {
	Enabled           bool   `toml:"enabled"`
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	PoolSize          int    `toml:"pool_size"`
	MaxRetries        int    `toml:"max_retries"`
	TLSEnabled        bool   `toml:"tls_enabled"`
	CustomsTTLMinutes int    `toml:"customs_ttl_minutes"`
	RulesTTLMinutes   int    `toml:"rules_ttl_minutes"`
}

// RulesConfig locates the rules seed file.
type RulesConfig struct {
	// Path to the rules TOML file. Empty means built-in defaults only.
	Path string `toml:"path"`
}

// ResolverConfig holds exchange-rate resolver parameters.
type ResolverConfig struct {
	CacheTTLMinutes int      `toml:"cache_ttl_minutes"`
	Intermediates   []string `toml:"intermediates"`
}

// PricingConfig holds price normalization parameters.
type PricingConfig struct {
	BatchWorkers    int    `toml:"batch_workers"`
	DefaultCurrency string `toml:"default_currency"`
	PreferredSource string `toml:"preferred_source"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "lumidex",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:           true,
			Addr:              "localhost:6379",
			DB:                0,
			PoolSize:          20,
			MaxRetries:        3,
			CustomsTTLMinutes: 15,
			RulesTTLMinutes:   15,
		},
		Resolver: ResolverConfig{
			CacheTTLMinutes: 5,
			Intermediates:   []string{"USD", "EUR"},
		},
		Pricing: PricingConfig{
			BatchWorkers:    16,
			DefaultCurrency: "EUR",
			PreferredSource: "cardmarket",
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"check": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, check)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Resolver
	if c.Resolver.CacheTTLMinutes < 0 {
		errs = append(errs, "resolver: cache_ttl_minutes must be >= 0")
	}
	for _, code := range c.Resolver.Intermediates {
		if !domain.ValidCurrency(domain.Currency(code)) {
			errs = append(errs, fmt.Sprintf("resolver: unknown intermediate currency %q", code))
		}
	}

	// Pricing
	if c.Pricing.BatchWorkers < 1 {
		errs = append(errs, "pricing: batch_workers must be >= 1")
	}
	if !domain.ValidCurrency(domain.Currency(c.Pricing.DefaultCurrency)) {
		errs = append(errs, fmt.Sprintf("pricing: unknown default_currency %q", c.Pricing.DefaultCurrency))
	}
	if !domain.ValidPriceSource(domain.PriceSource(c.Pricing.PreferredSource)) {
		errs = append(errs, fmt.Sprintf("pricing: unknown preferred_source %q (valid: tcgplayer, cardmarket)", c.Pricing.PreferredSource))
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
