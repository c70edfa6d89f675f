// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage/sqlstore"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	// Env is "development" or anything else; outside development a JWT
	// secret must be configured.
	Env  string
	Port int

	DBDriver    string
	DBPath      string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel string

	SplitTolerance     decimal.Decimal
	BudgetWarningRatio decimal.Decimal
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		DBDriver:    getEnv("DB_DRIVER", sqlstore.DriverSQLite),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil || cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL %q", os.Getenv("JWT_TTL"))
	}
	if cfg.SplitTolerance, err = getDecimal("SPLIT_TOLERANCE", money.DefaultTolerance); err != nil {
		return nil, err
	}
	if cfg.SplitTolerance.IsNegative() {
		return nil, fmt.Errorf("SPLIT_TOLERANCE must not be negative")
	}
	if cfg.BudgetWarningRatio, err = getDecimal("BUDGET_WARNING_RATIO", calculator.DefaultBudgetWarningRatio); err != nil {
		return nil, err
	}
	if !cfg.BudgetWarningRatio.IsPositive() || cfg.BudgetWarningRatio.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("BUDGET_WARNING_RATIO must be in (0, 1]")
	}

	switch cfg.DBDriver {
	case sqlstore.DriverSQLite:
	case sqlstore.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == sqlstore.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Ledger returns the numeric rules for the ledger engine.
func (c *Config) Ledger() ledger.Config {
	return ledger.Config{
		Tolerance:          c.SplitTolerance,
		BudgetWarningRatio: c.BudgetWarningRatio,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
