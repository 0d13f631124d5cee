package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		NewskyAPIKey:     "nsk_test",
		DiscordToken:     "token",
		DiscordChannelID: "123456789",
		PollIntervalStr:  "25s",
		FetchTimeoutStr:  "10s",
		LedgerHighWater:  100,
		LedgerLowWater:   50,
		DigestTimezone:   "UTC",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config should not return error, got: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		strip func(*Config)
		field string
	}{
		{"api key", func(c *Config) { c.NewskyAPIKey = "" }, "NEWSKY_API_KEY"},
		{"discord token", func(c *Config) { c.DiscordToken = "" }, "DISCORD_TOKEN"},
		{"channel id", func(c *Config) { c.DiscordChannelID = "" }, "DISCORD_CHANNEL_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.strip(&cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error for missing %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %s: %q", tt.field, err.Error())
			}
		})
	}
}

func TestValidate_InvalidPollInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		wantErr  string
	}{
		{"non-parseable", "invalid", "invalid duration"},
		{"negative", "-1s", "must be positive"},
		{"zero", "0s", "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.PollIntervalStr = tt.interval

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error for poll_interval=%q", tt.interval)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_InvertedWatermarks(t *testing.T) {
	cfg := validConfig()
	cfg.LedgerHighWater = 50
	cfg.LedgerLowWater = 100

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for inverted watermarks")
	}
	if !strings.Contains(err.Error(), "LEDGER_LOW_WATER") {
		t.Errorf("error should mention LEDGER_LOW_WATER: %q", err.Error())
	}
}

func TestValidate_UnknownTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.DigestTimezone = "Mars/Olympus_Mons"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if !strings.Contains(err.Error(), "DIGEST_TIMEZONE") {
		t.Errorf("error should mention DIGEST_TIMEZONE: %q", err.Error())
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := Config{
		PollIntervalStr: "invalid",
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}

	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	// Three missing credentials plus the bad duration.
	if len(errs) != 4 {
		t.Errorf("expected 4 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "NEWSKY_API_KEY", Message: "required"}
	got := err.Error()
	want := "NEWSKY_API_KEY: required"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Format(t *testing.T) {
	single := ValidationErrors{{Field: "F1", Message: "M1"}}
	if single.Error() != "F1: M1" {
		t.Errorf("single error = %q, want 'F1: M1'", single.Error())
	}

	multi := ValidationErrors{
		{Field: "F1", Message: "M1"},
		{Field: "F2", Message: "M2"},
	}
	got := multi.Error()
	if !strings.Contains(got, "2 validation errors") {
		t.Errorf("multi error should contain '2 validation errors': %q", got)
	}
	if !strings.Contains(got, "F1: M1") || !strings.Contains(got, "F2: M2") {
		t.Errorf("multi error should contain both errors: %q", got)
	}

	empty := ValidationErrors{}
	if empty.Error() != "" {
		t.Errorf("empty errors should return empty string, got %q", empty.Error())
	}
}
