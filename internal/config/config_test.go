package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("POLL_INTERVAL")
	os.Unsetenv("FETCH_TIMEOUT")
	os.Unsetenv("NEWSKY_BASE_URL")
	os.Unsetenv("LEDGER_PATH")
	os.Unsetenv("LEDGER_HIGH_WATER")
	os.Unsetenv("LEDGER_LOW_WATER")
	os.Unsetenv("RECENT_COUNT")
	os.Unsetenv("HTTP_SHUTDOWN_TIMEOUT")
	os.Unsetenv("DISPATCHER_DRAIN_TIMEOUT")
	os.Unsetenv("PRESENCE_ENABLED")
	os.Unsetenv("PRESENCE_INTERVAL")
	os.Unsetenv("DIGEST_TIMEZONE")

	cfg := Load()

	if cfg.PollInterval != 25*time.Second {
		t.Errorf("PollInterval: expected 25s, got %v", cfg.PollInterval)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout: expected 10s, got %v", cfg.FetchTimeout)
	}
	if cfg.NewskyBaseURL != "https://newsky.app/api/airline-api" {
		t.Errorf("NewskyBaseURL: got %q", cfg.NewskyBaseURL)
	}
	if cfg.LedgerPath != "flights.json" {
		t.Errorf("LedgerPath: expected flights.json, got %q", cfg.LedgerPath)
	}
	if cfg.LedgerHighWater != 100 || cfg.LedgerLowWater != 50 {
		t.Errorf("watermarks: expected 100/50, got %d/%d", cfg.LedgerHighWater, cfg.LedgerLowWater)
	}
	if cfg.RecentCount != 5 {
		t.Errorf("RecentCount: expected 5, got %d", cfg.RecentCount)
	}
	if cfg.HTTPShutdownTimeout != 10*time.Second {
		t.Errorf("HTTPShutdownTimeout: expected 10s, got %v", cfg.HTTPShutdownTimeout)
	}
	if cfg.DispatcherDrainTimeout != 30*time.Second {
		t.Errorf("DispatcherDrainTimeout: expected 30s, got %v", cfg.DispatcherDrainTimeout)
	}
	if !cfg.PresenceEnabled {
		t.Error("PresenceEnabled: expected true by default")
	}
	if cfg.PresenceInterval != time.Minute {
		t.Errorf("PresenceInterval: expected 1m, got %v", cfg.PresenceInterval)
	}
	if cfg.DigestTimezone != "UTC" {
		t.Errorf("DigestTimezone: expected UTC, got %q", cfg.DigestTimezone)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("POLL_INTERVAL", "45s")
	os.Setenv("FETCH_TIMEOUT", "3s")
	os.Setenv("LEDGER_HIGH_WATER", "200")
	os.Setenv("LEDGER_LOW_WATER", "120")
	os.Setenv("RECENT_COUNT", "10")
	os.Setenv("PRESENCE_ENABLED", "false")
	defer func() {
		os.Unsetenv("POLL_INTERVAL")
		os.Unsetenv("FETCH_TIMEOUT")
		os.Unsetenv("LEDGER_HIGH_WATER")
		os.Unsetenv("LEDGER_LOW_WATER")
		os.Unsetenv("RECENT_COUNT")
		os.Unsetenv("PRESENCE_ENABLED")
	}()

	cfg := Load()

	if cfg.PollInterval != 45*time.Second {
		t.Errorf("PollInterval: expected 45s, got %v", cfg.PollInterval)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout: expected 3s, got %v", cfg.FetchTimeout)
	}
	if cfg.LedgerHighWater != 200 || cfg.LedgerLowWater != 120 {
		t.Errorf("watermarks: expected 200/120, got %d/%d", cfg.LedgerHighWater, cfg.LedgerLowWater)
	}
	if cfg.RecentCount != 10 {
		t.Errorf("RecentCount: expected 10, got %d", cfg.RecentCount)
	}
	if cfg.PresenceEnabled {
		t.Error("PresenceEnabled: expected false")
	}
}

func TestLoad_InvalidIntegersFallBack(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"negative", "-1"},
		{"zero", "0"},
		{"non-numeric", "abc"},
		{"float", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("LEDGER_HIGH_WATER", tt.value)
			defer os.Unsetenv("LEDGER_HIGH_WATER")

			cfg := Load()

			if cfg.LedgerHighWater != 100 {
				t.Errorf("LedgerHighWater: expected fallback to 100 for %q, got %d", tt.value, cfg.LedgerHighWater)
			}
		})
	}
}

func TestLoad_PortFallbackForHTTPAddr(t *testing.T) {
	os.Unsetenv("HTTP_ADDR")
	os.Setenv("PORT", "3000")
	defer os.Unsetenv("PORT")

	cfg := Load()

	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr: expected :3000, got %q", cfg.HTTPAddr)
	}
}

func TestMaskedJSON_MasksSecrets(t *testing.T) {
	os.Setenv("NEWSKY_API_KEY", "nsk_live_secret")
	os.Setenv("DISCORD_TOKEN", "Bot.abc123.def456")
	defer func() {
		os.Unsetenv("NEWSKY_API_KEY")
		os.Unsetenv("DISCORD_TOKEN")
	}()

	cfg := Load()
	data, err := cfg.MaskedJSON()
	if err != nil {
		t.Fatalf("MaskedJSON failed: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "nsk_live_secret") || strings.Contains(out, "abc123") {
		t.Error("MaskedJSON leaked a secret")
	}
	if !strings.Contains(out, `"newsky_api_key": "***"`) {
		t.Error("MaskedJSON missing masked newsky_api_key")
	}
	if !strings.Contains(out, `"discord_token": "***"`) {
		t.Error("MaskedJSON missing masked discord_token")
	}
	if !strings.Contains(out, `"poll_interval"`) {
		t.Error("MaskedJSON missing poll_interval field")
	}
	if !strings.Contains(out, `"ledger_path"`) {
		t.Error("MaskedJSON missing ledger_path field")
	}
}
