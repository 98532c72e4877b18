package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	// Archive is on by default, so the postgres section must be filled in.
	cfg.Postgres.Host = "localhost"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got: %v", err)
	}
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
mode = "watch"
log_level = "debug"

[provider]
base_url = "https://feed.example.com/v1"
timeout = "5s"

[poll]
match_interval = "10s"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "watch" {
		t.Errorf("Mode = %q, want watch", cfg.Mode)
	}
	if cfg.Provider.BaseURL != "https://feed.example.com/v1" {
		t.Errorf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Timeout.Duration != 5*time.Second {
		t.Errorf("Provider.Timeout = %v, want 5s", cfg.Provider.Timeout.Duration)
	}
	if cfg.Poll.MatchInterval.Duration != 10*time.Second {
		t.Errorf("Poll.MatchInterval = %v, want 10s", cfg.Poll.MatchInterval.Duration)
	}
	// Untouched sections keep their defaults.
	if cfg.Poll.LeaderboardInterval.Duration != 60*time.Second {
		t.Errorf("Poll.LeaderboardInterval = %v, want 60s", cfg.Poll.LeaderboardInterval.Duration)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load with absent file: %v", err)
	}
	if cfg.Mode != "full" {
		t.Errorf("Mode = %q, want full", cfg.Mode)
	}
}

func TestEnvOverridesWinOverTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`mode = "serve"`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ARENABOARD_MODE", "archive")
	t.Setenv("ARENABOARD_SERVER_PORT", "9090")
	t.Setenv("ARENABOARD_POLL_MATCH_INTERVAL", "30s")
	t.Setenv("ARENABOARD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "archive" {
		t.Errorf("Mode = %q, want archive", cfg.Mode)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Poll.MatchInterval.Duration != 30*time.Second {
		t.Errorf("Poll.MatchInterval = %v, want 30s", cfg.Poll.MatchInterval.Duration)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Provider.BaseURL = ""
	cfg.Poll.MatchInterval.Duration = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown mode", "unknown log_level", "base_url", "match_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateTelegramHalfConfigured(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "123:abc"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "telegram") {
		t.Fatalf("expected telegram pairing error, got: %v", err)
	}

	cfg.Notify.TelegramChatID = "-100200300"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("paired telegram config should validate, got: %v", err)
	}
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Provider.APIKey = "prov-key"
	cfg.Postgres.Password = "pg-pass"
	cfg.Redis.Password = "redis-pass"
	cfg.S3.SecretKey = "s3-secret"
	cfg.Server.APIKey = "srv-key"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)
	for name, got := range map[string]string{
		"provider api key":  red.Provider.APIKey,
		"postgres password": red.Postgres.Password,
		"redis password":    red.Redis.Password,
		"s3 secret key":     red.S3.SecretKey,
		"server api key":    red.Server.APIKey,
		"telegram token":    red.Notify.TelegramToken,
	} {
		if got != "***" {
			t.Errorf("%s not redacted: %q", name, got)
		}
	}
	// Original untouched.
	if cfg.Postgres.Password != "pg-pass" {
		t.Errorf("original mutated: %q", cfg.Postgres.Password)
	}

	// Slice copies are independent.
	red.Server.CORSOrigins[0] = "mutated"
	if cfg.Server.CORSOrigins[0] == "mutated" {
		t.Error("CORSOrigins slice shared with original")
	}
}
