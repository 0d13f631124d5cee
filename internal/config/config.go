package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Config holds all configuration for the flightwatch application.
// Values are loaded from environment variables; see printUsage() for the full list.
type Config struct {
	NewskyAPIKey  string `json:"newsky_api_key"`
	NewskyBaseURL string `json:"newsky_base_url"`

	DiscordToken     string `json:"discord_token"`
	DiscordChannelID string `json:"discord_channel_id"`

	RedisAddr string `json:"redis_addr,omitempty"`
	HTTPAddr  string `json:"http_addr"`

	PollInterval    time.Duration `json:"-"`
	PollIntervalStr string        `json:"poll_interval"`

	FetchTimeout    time.Duration `json:"-"`
	FetchTimeoutStr string        `json:"fetch_timeout"`

	LedgerPath      string `json:"ledger_path"`
	LedgerHighWater int    `json:"ledger_high_water"`
	LedgerLowWater  int    `json:"ledger_low_water"`

	// RecentCount is how many recently closed flights each cycle inspects.
	RecentCount int `json:"recent_count"`

	EventBusBufferSize int `json:"eventbus_buffer_size"`

	// CircuitBreakerThreshold: 0 disables the circuit breaker.
	CircuitBreakerThreshold   int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown    time.Duration `json:"-"`
	CircuitBreakerCooldownStr string        `json:"circuit_breaker_cooldown"`

	HTTPShutdownTimeout       time.Duration `json:"-"`
	HTTPShutdownTimeoutStr    string        `json:"http_shutdown_timeout"`
	DispatcherDrainTimeout    time.Duration `json:"-"`
	DispatcherDrainTimeoutStr string        `json:"dispatcher_drain_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsAddr    string `json:"metrics_addr"`
	MetricsPath    string `json:"metrics_path"`

	// DigestCron is a standard 5-field cron expression; empty disables the digest.
	DigestCron     string `json:"digest_cron"`
	DigestTimezone string `json:"digest_timezone"`

	PresenceEnabled     bool          `json:"presence_enabled"`
	PresenceInterval    time.Duration `json:"-"`
	PresenceIntervalStr string        `json:"presence_interval"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		NewskyAPIKey:              os.Getenv("NEWSKY_API_KEY"),
		NewskyBaseURL:             os.Getenv("NEWSKY_BASE_URL"),
		DiscordToken:              os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID:          os.Getenv("DISCORD_CHANNEL_ID"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		HTTPAddr:                  os.Getenv("HTTP_ADDR"),
		PollIntervalStr:           os.Getenv("POLL_INTERVAL"),
		FetchTimeoutStr:           os.Getenv("FETCH_TIMEOUT"),
		LedgerPath:                os.Getenv("LEDGER_PATH"),
		HTTPShutdownTimeoutStr:    os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		DispatcherDrainTimeoutStr: os.Getenv("DISPATCHER_DRAIN_TIMEOUT"),
		MetricsEnabled:            os.Getenv("METRICS_ENABLED") == "true",
		MetricsAddr:               os.Getenv("METRICS_ADDR"),
		MetricsPath:               os.Getenv("METRICS_PATH"),
		DigestCron:                os.Getenv("DIGEST_CRON"),
		DigestTimezone:            os.Getenv("DIGEST_TIMEZONE"),
		PresenceEnabled:           os.Getenv("PRESENCE_ENABLED") != "false",
		PresenceIntervalStr:       os.Getenv("PRESENCE_INTERVAL"),
	}

	if highStr := os.Getenv("LEDGER_HIGH_WATER"); highStr != "" {
		if n, err := parseInt(highStr); err == nil && n > 0 {
			cfg.LedgerHighWater = n
		} else {
			log.Printf("config: invalid LEDGER_HIGH_WATER %q (must be a positive integer), using default 100", highStr)
		}
	}
	if cfg.LedgerHighWater == 0 {
		cfg.LedgerHighWater = 100
	}

	if lowStr := os.Getenv("LEDGER_LOW_WATER"); lowStr != "" {
		if n, err := parseInt(lowStr); err == nil && n > 0 {
			cfg.LedgerLowWater = n
		} else {
			log.Printf("config: invalid LEDGER_LOW_WATER %q (must be a positive integer), using default 50", lowStr)
		}
	}
	if cfg.LedgerLowWater == 0 {
		cfg.LedgerLowWater = 50
	}

	if countStr := os.Getenv("RECENT_COUNT"); countStr != "" {
		if n, err := parseInt(countStr); err == nil && n > 0 {
			cfg.RecentCount = n
		} else {
			log.Printf("config: invalid RECENT_COUNT %q (must be a positive integer), using default 5", countStr)
		}
	}
	if cfg.RecentCount == 0 {
		cfg.RecentCount = 5
	}

	if bufStr := os.Getenv("EVENTBUS_BUFFER_SIZE"); bufStr != "" {
		if n, err := parseInt(bufStr); err == nil && n > 0 {
			cfg.EventBusBufferSize = n
		} else {
			log.Printf("config: invalid EVENTBUS_BUFFER_SIZE %q (must be a positive integer), using default 100", bufStr)
		}
	}
	if cfg.EventBusBufferSize == 0 {
		cfg.EventBusBufferSize = 100
	}

	if cbThreshStr := os.Getenv("CIRCUIT_BREAKER_THRESHOLD"); cbThreshStr != "" {
		if n, err := parseInt(cbThreshStr); err == nil {
			cfg.CircuitBreakerThreshold = n
		} else {
			log.Printf("config: invalid CIRCUIT_BREAKER_THRESHOLD %q, using default 5", cbThreshStr)
		}
	}
	if cfg.CircuitBreakerThreshold == 0 && os.Getenv("CIRCUIT_BREAKER_THRESHOLD") == "" {
		cfg.CircuitBreakerThreshold = 5
	}

	cfg.CircuitBreakerCooldownStr = os.Getenv("CIRCUIT_BREAKER_COOLDOWN")

	if cfg.NewskyBaseURL == "" {
		cfg.NewskyBaseURL = "https://newsky.app/api/airline-api"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "flights.json"
	}

	// Support Railway's PORT variable as fallback for HTTP_ADDR.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8080"
		}
	}
	if cfg.PollIntervalStr == "" {
		cfg.PollIntervalStr = "25s"
	}
	if cfg.FetchTimeoutStr == "" {
		cfg.FetchTimeoutStr = "10s"
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.DispatcherDrainTimeoutStr == "" {
		cfg.DispatcherDrainTimeoutStr = "30s"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.CircuitBreakerCooldownStr == "" {
		cfg.CircuitBreakerCooldownStr = "2m"
	}
	if cfg.DigestTimezone == "" {
		cfg.DigestTimezone = "UTC"
	}
	if cfg.PresenceIntervalStr == "" {
		cfg.PresenceIntervalStr = "1m"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.PollIntervalStr); err == nil {
		cfg.PollInterval = d
	}
	if d, err := time.ParseDuration(cfg.FetchTimeoutStr); err == nil {
		cfg.FetchTimeout = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.DispatcherDrainTimeoutStr); err == nil {
		cfg.DispatcherDrainTimeout = d
	}
	if d, err := time.ParseDuration(cfg.CircuitBreakerCooldownStr); err == nil {
		cfg.CircuitBreakerCooldown = d
	}
	if d, err := time.ParseDuration(cfg.PresenceIntervalStr); err == nil {
		cfg.PresenceInterval = d
	}

	return cfg
}

// parseInt parses a string as an integer.
func parseInt(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		NewskyAPIKey            string `json:"newsky_api_key"`
		NewskyBaseURL           string `json:"newsky_base_url"`
		DiscordToken            string `json:"discord_token"`
		DiscordChannelID        string `json:"discord_channel_id"`
		RedisAddr               string `json:"redis_addr,omitempty"`
		HTTPAddr                string `json:"http_addr"`
		PollInterval            string `json:"poll_interval"`
		FetchTimeout            string `json:"fetch_timeout"`
		LedgerPath              string `json:"ledger_path"`
		LedgerHighWater         int    `json:"ledger_high_water"`
		LedgerLowWater          int    `json:"ledger_low_water"`
		RecentCount             int    `json:"recent_count"`
		EventBusBufferSize      int    `json:"eventbus_buffer_size"`
		CircuitBreakerThreshold int    `json:"circuit_breaker_threshold"`
		CircuitBreakerCooldown  string `json:"circuit_breaker_cooldown"`
		HTTPShutdownTimeout     string `json:"http_shutdown_timeout"`
		DispatcherDrainTimeout  string `json:"dispatcher_drain_timeout"`
		MetricsEnabled          bool   `json:"metrics_enabled"`
		MetricsAddr             string `json:"metrics_addr"`
		MetricsPath             string `json:"metrics_path"`
		DigestCron              string `json:"digest_cron"`
		DigestTimezone          string `json:"digest_timezone"`
		PresenceEnabled         bool   `json:"presence_enabled"`
		PresenceInterval        string `json:"presence_interval"`
	}{
		NewskyAPIKey:            maskSecret(c.NewskyAPIKey),
		NewskyBaseURL:           c.NewskyBaseURL,
		DiscordToken:            maskSecret(c.DiscordToken),
		DiscordChannelID:        c.DiscordChannelID,
		RedisAddr:               c.RedisAddr,
		HTTPAddr:                c.HTTPAddr,
		PollInterval:            c.PollIntervalStr,
		FetchTimeout:            c.FetchTimeoutStr,
		LedgerPath:              c.LedgerPath,
		LedgerHighWater:         c.LedgerHighWater,
		LedgerLowWater:          c.LedgerLowWater,
		RecentCount:             c.RecentCount,
		EventBusBufferSize:      c.EventBusBufferSize,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  c.CircuitBreakerCooldownStr,
		HTTPShutdownTimeout:     c.HTTPShutdownTimeoutStr,
		DispatcherDrainTimeout:  c.DispatcherDrainTimeoutStr,
		MetricsEnabled:          c.MetricsEnabled,
		MetricsAddr:             c.MetricsAddr,
		MetricsPath:             c.MetricsPath,
		DigestCron:              c.DigestCron,
		DigestTimezone:          c.DigestTimezone,
		PresenceEnabled:         c.PresenceEnabled,
		PresenceInterval:        c.PresenceIntervalStr,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value entirely.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
