package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Allocation worker
	AllocationBatchSize int
	AllocationInterval  time.Duration

	// Views
	TitheChannelMode string
	FeedLimit        int
	HistoryCacheSize int
	HistoryCacheTTL  time.Duration

	// Google Sheets archive mirror, disabled when the ID is empty
	GoogleSpreadsheetID      string
	GoogleArchiveSheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Dashboard client
	RemoteAPIURL  string
	RemoteTimeout time.Duration

	LogLevel string
}

var validBackends = []string{"memory", "sqlite"}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fms.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fms"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "district_allocations"),

		AllocationBatchSize: getEnvInt("ALLOCATION_BATCH_SIZE", 50),
		AllocationInterval:  getEnvDuration("ALLOCATION_INTERVAL", time.Minute),

		TitheChannelMode: getEnv("TITHE_CHANNEL_MODE", string(aggregate.ChannelsAsRecorded)),
		FeedLimit:        getEnvInt("FEED_LIMIT", 10),
		HistoryCacheSize: getEnvInt("HISTORY_CACHE_SIZE", 16),
		HistoryCacheTTL:  getEnvDuration("HISTORY_CACHE_TTL", time.Hour),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleArchiveSheetName:   getEnv("GOOGLE_ARCHIVE_SHEET_NAME", "Archive"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		RemoteAPIURL:  getEnv("REMOTE_API_URL", "http://localhost:8081"),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// AggregateOptions returns the aggregation options selected by the
// configuration. Call it after Validate.
func (c *Config) AggregateOptions() aggregate.Options {
	mode, err := aggregate.ParseChannelMode(c.TitheChannelMode)
	if err != nil {
		mode = aggregate.ChannelsAsRecorded
	}
	return aggregate.Options{Channels: mode}
}

// AMQPEnabled reports whether allocation events go through a broker.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AllocationBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid allocation batch size %d: must be at least 1", c.AllocationBatchSize))
	} else if c.AllocationBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid allocation batch size %d: must be at most 1000", c.AllocationBatchSize))
	}

	if c.AllocationInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid allocation interval %v: must be at least 1 second", c.AllocationInterval))
	} else if c.AllocationInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid allocation interval %v: must be at most 24 hours", c.AllocationInterval))
	}

	if _, err := aggregate.ParseChannelMode(c.TitheChannelMode); err != nil {
		errors = append(errors, fmt.Sprintf("invalid tithe channel mode '%s': must be as-recorded, ledger or income", c.TitheChannelMode))
	}

	if c.FeedLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid feed limit %d: must be at least 1", c.FeedLimit))
	}
	if c.HistoryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid history cache size %d: must be at least 1", c.HistoryCacheSize))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errors = append(errors, "GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE is required when GOOGLE_SPREADSHEET_ID is set")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.RemoteAPIURL != "" {
		if u, err := url.Parse(c.RemoteAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid remote API URL '%s': must be http or https", c.RemoteAPIURL))
		}
	}
	if c.RemoteTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must not be negative", c.RemoteTimeout))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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
