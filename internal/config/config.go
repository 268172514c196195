// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for ledger.db and balances.db (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// RecomputeSchedule is the cron spec (with seconds) for the full recompute job
	RecomputeSchedule string
	// MaintenanceSchedule is the cron spec for WAL and integrity checks
	MaintenanceSchedule string
	// StorageTimezone is the IANA zone latest_check values are written in
	StorageTimezone string
	CORSOrigins     []string
	// InsertBatchSize caps the rows per multi-row INSERT issued by the synchronizer
	InsertBatchSize int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BALANCES_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnvAsInt("PORT", 8001),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		RecomputeSchedule:   getEnv("RECOMPUTE_SCHEDULE", "0 30 3 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 * * * *"),
		StorageTimezone:     getEnv("STORAGE_TIMEZONE", "UTC"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		InsertBatchSize:     getEnvAsInt("INSERT_BATCH_SIZE", 200),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if _, err := time.LoadLocation(c.StorageTimezone); err != nil {
		return fmt.Errorf("invalid storage timezone %q: %w", c.StorageTimezone, err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"recompute":   c.RecomputeSchedule,
		"maintenance": c.MaintenanceSchedule,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
		}
	}

	if c.InsertBatchSize <= 0 {
		return fmt.Errorf("insert batch size must be positive, got %d", c.InsertBatchSize)
	}

	return nil
}

// Location returns the storage timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StorageTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LedgerDBPath returns the path of the raw event database
func (c *Config) LedgerDBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// BalancesDBPath returns the path of the balance table database
func (c *Config) BalancesDBPath() string {
	return filepath.Join(c.DataDir, "balances.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
