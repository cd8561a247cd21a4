package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// View
	PageSize int

	// Store backend selection
	StoreBackend string

	// Remote sheet sources
	SheetCSVURL         string
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Drop directory for CSV files; empty disables the watcher
	WatchDir string

	// Evidence attachments
	EvidenceDir string

	// Ingestion
	IngestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		PageSize: getEnvInt("PAGE_SIZE", 10),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),

		SheetCSVURL:         getEnv("SHEET_CSV_URL", ""),
		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Bitacora"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bitacora"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "bitacora_audit"),

		WatchDir: getEnv("WATCH_DIR", ""),

		EvidenceDir: getEnv("EVIDENCE_DIR", "./data/evidence"),

		IngestTimeout: getEnvDuration("INGEST_TIMEOUT", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	} else if c.PageSize > 500 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at most 500", c.PageSize))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.StoreBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	if c.SheetCSVURL != "" {
		if parsedURL, err := url.Parse(c.SheetCSVURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid sheet CSV URL '%s': %v", c.SheetCSVURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid sheet CSV URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when a spreadsheet ID is provided")
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

	if c.WatchDir != "" {
		if info, err := os.Stat(c.WatchDir); err != nil {
			errors = append(errors, fmt.Sprintf("watch directory '%s' is not accessible: %v", c.WatchDir, err))
		} else if !info.IsDir() {
			errors = append(errors, fmt.Sprintf("watch path '%s' is not a directory", c.WatchDir))
		}
	}

	if c.EvidenceDir == "" {
		errors = append(errors, "evidence directory cannot be empty")
	}

	if c.IngestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid ingest timeout %v: must be at least 1 second", c.IngestTimeout))
	} else if c.IngestTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid ingest timeout %v: must be at most 1 hour", c.IngestTimeout))
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
