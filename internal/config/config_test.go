package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:               "5000",
		LogLevel:           "info",
		SQLiteDBPath:       filepath.Join(t.TempDir(), "spendwise.db"),
		AMQPExchange:       "spendwise",
		AMQPQueue:          "record_events",
		ListCacheSize:      200,
		ListCacheTTL:       5 * time.Minute,
		RateLimitPerMinute: 60,
		ServerURL:          "http://localhost:5000",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "web" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "must be between"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://rabbit:5672" }, "AMQP URL scheme"},
		{"amqp without exchange", func(c *Config) { c.AMQPURL = "amqp://rabbit:5672"; c.AMQPExchange = "" }, "exchange name"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://rabbit:5672"; c.AMQPQueue = "" }, "queue name"},
		{"zero cache size", func(c *Config) { c.ListCacheSize = 0 }, "cache size"},
		{"tiny cache ttl", func(c *Config) { c.ListCacheTTL = time.Millisecond }, "cache TTL"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "rate limit"},
		{"bad server url", func(c *Config) { c.ServerURL = "::not-a-url" }, "server URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "bad"
	cfg.ListCacheSize = 0
	cfg.RateLimitPerMinute = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"invalid port", "cache size", "rate limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.AMQPURL != "" {
		t.Fatalf("AMQP should be disabled by default")
	}
	if !cfg.CloseModalOnError {
		t.Fatalf("CloseModalOnError should default to true")
	}
}
