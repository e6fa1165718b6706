package config_test

import (
	"testing"
	"time"

	"github.com/ndewijer/finpilot-backend/internal/config"
)

// TestLoad tests environment parsing and defaults.
//
// WHY: Missing provider keys must leave the integrations disabled rather than
// failing startup, and malformed durations must be caught before the server runs.
func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("FINNHUB_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("ADVISOR_TIMEOUT", "")
		t.Setenv("SERVER_HOST", "")
		t.Setenv("SERVER_PORT", "")
		t.Setenv("GEMINI_MODEL", "")
		t.Setenv("NEWS_REFRESH_SCHEDULE", "")

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if cfg.Server.Addr != "localhost:5001" {
			t.Errorf("Expected addr localhost:5001, got %s", cfg.Server.Addr)
		}
		if cfg.Finnhub.APIKey != "" {
			t.Errorf("Expected empty Finnhub key, got %q", cfg.Finnhub.APIKey)
		}
		if cfg.Advisor.Model != "gemini-2.5-flash" {
			t.Errorf("Expected default model, got %s", cfg.Advisor.Model)
		}
		if cfg.Advisor.Timeout != 60*time.Second {
			t.Errorf("Expected 60s advisor timeout, got %s", cfg.Advisor.Timeout)
		}
		if cfg.Scheduler.NewsRefreshSchedule != "@every 1m" {
			t.Errorf("Expected @every 1m, got %s", cfg.Scheduler.NewsRefreshSchedule)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("FINNHUB_API_KEY", "fh-key")
		t.Setenv("ADVISOR_TIMEOUT", "15s")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
		t.Setenv("LOG_PRETTY", "true")

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if cfg.Finnhub.APIKey != "fh-key" {
			t.Errorf("Expected fh-key, got %q", cfg.Finnhub.APIKey)
		}
		if cfg.Advisor.Timeout != 15*time.Second {
			t.Errorf("Expected 15s, got %s", cfg.Advisor.Timeout)
		}
		if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("Unexpected origins: %v", cfg.CORS.AllowedOrigins)
		}
		if !cfg.Log.Pretty {
			t.Error("Expected pretty logging")
		}
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		t.Setenv("ADVISOR_TIMEOUT", "soon")

		if _, err := config.Load(); err == nil {
			t.Error("Expected error for malformed ADVISOR_TIMEOUT")
		}
	})
}
