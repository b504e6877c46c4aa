package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredCreds sets the two credentials without which Load must fail.
func setRequiredCreds(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredCreds(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.DBPath != "app.db" {
		t.Errorf("DBPath = %q, want app.db", cfg.DBPath)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate limits = %v/%v, want 5/10", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.DedupTTL != 24*time.Hour {
		t.Errorf("DedupTTL = %v, want 24h", cfg.DedupTTL)
	}
	if cfg.OTEL.Enabled {
		t.Error("OTEL should default to disabled")
	}
	if cfg.OTEL.ServiceName != "kaimono-bot" {
		t.Errorf("OTEL.ServiceName = %q", cfg.OTEL.ServiceName)
	}
	if cfg.SlackWebhookURL != "" {
		t.Errorf("SlackWebhookURL should default to empty, got %q", cfg.SlackWebhookURL)
	}
}

func TestLoad_MissingLineCredentials(t *testing.T) {
	t.Setenv("LINE_CHANNEL_SECRET", "")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LINE_CHANNEL_SECRET") {
		t.Fatalf("expected LINE_CHANNEL_SECRET error, got %v", err)
	}

	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LINE_CHANNEL_ACCESS_TOKEN") {
		t.Fatalf("expected LINE_CHANNEL_ACCESS_TOKEN error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredCreds(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "Warning") // normalized to warn
	t.Setenv("GIN_MODE", "DEBUG")
	t.Setenv("DB_PATH", "/data/bot.db")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RATE_BURST", "3")
	t.Setenv("DEDUP_TTL", "1h")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example.com/x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != "warn" || cfg.GinMode != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DBPath != "/data/bot.db" || cfg.RateRPS != 2.5 || cfg.RateBurst != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DedupTTL != time.Hour {
		t.Errorf("DedupTTL = %v, want 1h", cfg.DedupTTL)
	}
	if cfg.SlackWebhookURL != "https://hooks.example.com/x" {
		t.Errorf("SlackWebhookURL = %q", cfg.SlackWebhookURL)
	}
}

func TestLoad_InvalidGinModeFallsBack(t *testing.T) {
	setRequiredCreds(t)
	t.Setenv("GIN_MODE", "turbo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release fallback", cfg.GinMode)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"zero dedup ttl", map[string]string{"DEDUP_TTL": "-5m"}, "DEDUP_TTL"},
		{"bad sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "-1s"}, "timeouts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredCreds(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	t.Setenv("LINE_CHANNEL_SECRET", "")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLoad()
}
