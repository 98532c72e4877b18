package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARENABOARD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing file is not an
// error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overlays ARENABOARD_* environment variables onto cfg.
// Unset variables leave the existing value untouched.
func applyEnvOverrides(cfg *Config) {
	setStr("ARENABOARD_MODE", &cfg.Mode)
	setStr("ARENABOARD_LOG_LEVEL", &cfg.LogLevel)

	setStr("ARENABOARD_PROVIDER_BASE_URL", &cfg.Provider.BaseURL)
	setStr("ARENABOARD_PROVIDER_API_KEY", &cfg.Provider.APIKey)
	setDuration("ARENABOARD_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)

	setBool("ARENABOARD_REDIS_ENABLED", &cfg.Redis.Enabled)
	setStr("ARENABOARD_REDIS_ADDR", &cfg.Redis.Addr)
	setStr("ARENABOARD_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("ARENABOARD_REDIS_DB", &cfg.Redis.DB)
	setInt("ARENABOARD_REDIS_POOL_SIZE", &cfg.Redis.PoolSize)
	setBool("ARENABOARD_REDIS_TLS_ENABLED", &cfg.Redis.TLSEnabled)

	setStr("ARENABOARD_POSTGRES_DSN", &cfg.Postgres.DSN)
	setStr("ARENABOARD_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("ARENABOARD_POSTGRES_PORT", &cfg.Postgres.Port)
	setStr("ARENABOARD_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setStr("ARENABOARD_POSTGRES_USER", &cfg.Postgres.User)
	setStr("ARENABOARD_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setStr("ARENABOARD_POSTGRES_SSL_MODE", &cfg.Postgres.SSLMode)
	setBool("ARENABOARD_POSTGRES_RUN_MIGRATIONS", &cfg.Postgres.RunMigrations)

	setBool("ARENABOARD_S3_ENABLED", &cfg.S3.Enabled)
	setStr("ARENABOARD_S3_ENDPOINT", &cfg.S3.Endpoint)
	setStr("ARENABOARD_S3_REGION", &cfg.S3.Region)
	setStr("ARENABOARD_S3_BUCKET", &cfg.S3.Bucket)
	setStr("ARENABOARD_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	setStr("ARENABOARD_S3_SECRET_KEY", &cfg.S3.SecretKey)

	setDuration("ARENABOARD_POLL_MATCH_INTERVAL", &cfg.Poll.MatchInterval)
	setDuration("ARENABOARD_POLL_LEADERBOARD_INTERVAL", &cfg.Poll.LeaderboardInterval)
	setDuration("ARENABOARD_POLL_SCAN_INTERVAL", &cfg.Poll.ScanInterval)

	setBool("ARENABOARD_ARCHIVE_ENABLED", &cfg.Archive.Enabled)
	setStr("ARENABOARD_ARCHIVE_CRON", &cfg.Archive.Cron)

	setBool("ARENABOARD_SERVER_ENABLED", &cfg.Server.Enabled)
	setInt("ARENABOARD_SERVER_PORT", &cfg.Server.Port)
	setStringSlice("ARENABOARD_SERVER_CORS_ORIGINS", &cfg.Server.CORSOrigins)
	setStr("ARENABOARD_SERVER_API_KEY", &cfg.Server.APIKey)
	setInt("ARENABOARD_SERVER_RATE_LIMIT", &cfg.Server.RateLimit)
	setDuration("ARENABOARD_SERVER_RATE_WINDOW", &cfg.Server.RateWindow)

	setStr("ARENABOARD_NOTIFY_TELEGRAM_TOKEN", &cfg.Notify.TelegramToken)
	setStr("ARENABOARD_NOTIFY_TELEGRAM_CHAT_ID", &cfg.Notify.TelegramChatID)
	setStr("ARENABOARD_NOTIFY_DISCORD_WEBHOOK_URL", &cfg.Notify.DiscordWebhookURL)
	setStringSlice("ARENABOARD_NOTIFY_EVENTS", &cfg.Notify.Events)
}

func setStr(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *duration) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(key string, dst *[]string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
