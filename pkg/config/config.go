package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Water-data portal (remote CSV source)
	Portal PortalConfig

	// Ingest
	Ingest IngestConfig

	// Regulatory limit overrides, keyed by parameter name.
	// Empty map means the built-in WHO/BIS table applies unchanged.
	ThresholdOverrides map[string]float64

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PortalConfig holds configuration for the public water-data portal
// the bulk importer pulls station CSVs from.
type PortalConfig struct {
	BaseURL    string
	RatePerSec float64 // polite crawl rate against the portal
	Burst      int
}

// IngestConfig holds bulk import configuration
type IngestConfig struct {
	Workers int
	Strict  bool // reject rows with non-numeric readings instead of coercing
}

// thresholdParams are the parameters that accept a LIMIT_<NAME> override.
var thresholdParams = []string{
	"lead", "cadmium", "arsenic", "chromium", "uranium", "iron", "mercury",
	"fluoride", "nitrate", "tds", "ph_min", "ph_max",
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Portal: PortalConfig{
			BaseURL:    getEnv("PORTAL_BASE_URL", "https://indiawris.gov.in/wris"),
			RatePerSec: getEnvAsFloat("PORTAL_RATE_PER_SEC", 2.0),
			Burst:      getEnvAsInt("PORTAL_BURST", 1),
		},

		Ingest: IngestConfig{
			Workers: getEnvAsInt("INGEST_WORKERS", 5),
			Strict:  getEnvAsBool("INGEST_STRICT", false),
		},

		ThresholdOverrides: loadThresholdOverrides(),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Ingest.Workers < 1 {
		return fmt.Errorf("INGEST_WORKERS must be at least 1")
	}

	for name, limit := range c.ThresholdOverrides {
		if limit <= 0 && name != "ph_min" {
			return fmt.Errorf("LIMIT_%s must be positive", name)
		}
	}

	return nil
}

// loadThresholdOverrides collects LIMIT_<PARAM> overrides for the
// regulatory limit table. Unset parameters keep their built-in limit.
func loadThresholdOverrides() map[string]float64 {
	overrides := make(map[string]float64)
	for _, name := range thresholdParams {
		key := "LIMIT_" + strings.ToUpper(name)
		valueStr := os.Getenv(key)
		if valueStr == "" {
			continue
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			continue
		}
		overrides[name] = value
	}
	return overrides
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}

	return value
}
