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
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendS3}

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Storage
	StorageBackend string
	LedgerKey      string
	DataDir        string
	SQLiteDBPath   string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// S3
	S3Bucket           string
	S3Region           string
	S3Prefix           string
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncInterval time.Duration

	// Presentation
	CurrencyLabel string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		LedgerKey:      getEnv("LEDGER_KEY", "invoices"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/fatura.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "eu-central-1"),
		S3Prefix:           getEnv("S3_PREFIX", "fatura/"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fatura"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_invoices"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Faturalar"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		CurrencyLabel: getEnv("CURRENCY_LABEL", "TL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// SheetsEnabled reports whether a spreadsheet export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validBackends, c.StorageBackend) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validBackends))
	}

	if strings.TrimSpace(c.LedgerKey) == "" {
		errors = append(errors, "ledger key cannot be empty")
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errors = append(errors, "Redis address cannot be empty when using redis backend")
		}
		if c.RedisDB < 0 {
			errors = append(errors, fmt.Sprintf("invalid Redis database %d: must not be negative", c.RedisDB))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errors = append(errors, "S3 bucket is required when using s3 backend")
		}
		if c.S3Region == "" {
			errors = append(errors, "S3 region is required when using s3 backend")
		}
		if (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
			errors = append(errors, "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
		}
	}

	// Validate AMQP URL if provided
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

	// Validate Google Sheets export if a spreadsheet is configured
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
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
