package config

import (
	"fmt"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	// The bot cannot run without upstream credentials and a target channel.
	if cfg.NewskyAPIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "NEWSKY_API_KEY",
			Message: "required",
		})
	}
	if cfg.DiscordToken == "" {
		errs = append(errs, ValidationError{
			Field:   "DISCORD_TOKEN",
			Message: "required",
		})
	}
	if cfg.DiscordChannelID == "" {
		errs = append(errs, ValidationError{
			Field:   "DISCORD_CHANNEL_ID",
			Message: "required",
		})
	}

	// POLL_INTERVAL must be a valid positive duration
	if cfg.PollIntervalStr != "" {
		d, err := time.ParseDuration(cfg.PollIntervalStr)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "POLL_INTERVAL",
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{
				Field:   "POLL_INTERVAL",
				Message: "must be positive",
			})
		}
	}

	if cfg.FetchTimeoutStr != "" {
		d, err := time.ParseDuration(cfg.FetchTimeoutStr)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "FETCH_TIMEOUT",
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{
				Field:   "FETCH_TIMEOUT",
				Message: "must be positive",
			})
		}
	}

	// Watermarks must be orderable or eviction would never terminate.
	if cfg.LedgerLowWater > cfg.LedgerHighWater {
		errs = append(errs, ValidationError{
			Field:   "LEDGER_LOW_WATER",
			Message: fmt.Sprintf("must not exceed LEDGER_HIGH_WATER (%d > %d)", cfg.LedgerLowWater, cfg.LedgerHighWater),
		})
	}

	if cfg.DigestTimezone != "" {
		if _, err := time.LoadLocation(cfg.DigestTimezone); err != nil {
			errs = append(errs, ValidationError{
				Field:   "DIGEST_TIMEZONE",
				Message: fmt.Sprintf("unknown timezone: %v", err),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
