package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies LUMIDEX_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LUMIDEX_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Database ──
	setStr(&cfg.Database.DSN, "LUMIDEX_DATABASE_DSN")
	setStr(&cfg.Database.Host, "LUMIDEX_DATABASE_HOST")
	setInt(&cfg.Database.Port, "LUMIDEX_DATABASE_PORT")
	setStr(&cfg.Database.Database, "LUMIDEX_DATABASE_NAME")
	setStr(&cfg.Database.User, "LUMIDEX_DATABASE_USER")
	setStr(&cfg.Database.Password, "LUMIDEX_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "LUMIDEX_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "LUMIDEX_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "LUMIDEX_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "LUMIDEX_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "LUMIDEX_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "LUMIDEX_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LUMIDEX_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LUMIDEX_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "LUMIDEX_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "LUMIDEX_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "LUMIDEX_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CustomsTTLMinutes, "LUMIDEX_REDIS_CUSTOMS_TTL_MINUTES")
	setInt(&cfg.Redis.RulesTTLMinutes, "LUMIDEX_REDIS_RULES_TTL_MINUTES")

	// ── Rules ──
	setStr(&cfg.Rules.Path, "LUMIDEX_RULES_PATH")

	// ── Resolver ──
	setInt(&cfg.Resolver.CacheTTLMinutes, "LUMIDEX_RESOLVER_CACHE_TTL_MINUTES")
	setStringSlice(&cfg.Resolver.Intermediates, "LUMIDEX_RESOLVER_INTERMEDIATES")

	// ── Pricing ──
	setInt(&cfg.Pricing.BatchWorkers, "LUMIDEX_PRICING_BATCH_WORKERS")
	setStr(&cfg.Pricing.DefaultCurrency, "LUMIDEX_PRICING_DEFAULT_CURRENCY")
	setStr(&cfg.Pricing.PreferredSource, "LUMIDEX_PRICING_PREFERRED_SOURCE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "LUMIDEX_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "LUMIDEX_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "LUMIDEX_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.Mode, "LUMIDEX_MODE")
	setStr(&cfg.LogLevel, "LUMIDEX_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
