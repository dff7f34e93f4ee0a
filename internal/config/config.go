package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Known mirror target names accepted in MIRROR_TARGETS.
const (
	MirrorWorkbook = "workbook"
	MirrorGoogle   = "google"
	MirrorMemory   = "memory"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DatabasePath string

	// Logging
	LogLevel  string
	LogFormat string

	// Exchange-rate API
	RateAPIBaseURL string
	RateAPITimeout time.Duration

	// AMQP export pipeline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export targets
	ExportDir     string
	MirrorTargets []string

	// Google Sheets mirror (optional)
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Workers
	ReminderInterval      time.Duration
	ExportRefreshInterval time.Duration

	// Web layer
	CacheTTL       time.Duration
	DashboardLimit int
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/relocation.db"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateAPIBaseURL: getEnv("RATE_API_BASE_URL", "https://api.frankfurter.app"),
		RateAPITimeout: getEnvDuration("RATE_API_TIMEOUT", 5*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "relocationos"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_exports"),

		ExportDir:     getEnv("EXPORT_DIR", "./exports"),
		MirrorTargets: splitList(getEnv("MIRROR_TARGETS", MirrorWorkbook)),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		ReminderInterval:      getEnvDuration("REMINDER_INTERVAL", 1*time.Hour),
		ExportRefreshInterval: getEnvDuration("EXPORT_REFRESH_INTERVAL", 15*time.Minute),

		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		DashboardLimit: getEnvInt("DASHBOARD_LIMIT", 5),
	}

	return cfg
}

// Validate collects every configuration problem into a single error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabasePath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.RateAPIBaseURL != "" {
		if u, err := url.Parse(c.RateAPIBaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid rate API base URL '%s': %v", c.RateAPIBaseURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid rate API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}
	if c.RateAPITimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid rate API timeout %v: must be at least 1 second", c.RateAPITimeout))
	} else if c.RateAPITimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid rate API timeout %v: must be at most 1 minute", c.RateAPITimeout))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	for _, target := range c.MirrorTargets {
		switch target {
		case MirrorWorkbook, MirrorGoogle, MirrorMemory:
		default:
			errs = append(errs, fmt.Sprintf("unknown mirror target '%s': must be one of workbook, google, memory", target))
		}
	}
	if c.hasMirrorTarget(MirrorWorkbook) && c.ExportDir == "" {
		errs = append(errs, "export directory cannot be empty when the workbook mirror is enabled")
	}
	if c.hasMirrorTarget(MirrorGoogle) {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google spreadsheet ID is required when the google mirror is enabled")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the google mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ReminderInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid reminder interval %v: must be at most 24 hours", c.ReminderInterval))
	}
	if c.ExportRefreshInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid export refresh interval %v: must be at least 1 minute", c.ExportRefreshInterval))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.DashboardLimit < 1 || c.DashboardLimit > 100 {
		errs = append(errs, fmt.Sprintf("invalid dashboard limit %d: must be between 1 and 100", c.DashboardLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func (c *Config) hasMirrorTarget(name string) bool {
	for _, t := range c.MirrorTargets {
		if t == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
