package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Archive       ArchiveConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSOrigins        []string
	SeedDemoData       bool
}

type DatabaseConfig struct {
	// URL overrides the discrete POSTGRES_* settings when set. Empty URL and
	// empty host select the in-memory store.
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ArchiveConfig controls where original statement uploads are kept.
type ArchiveConfig struct {
	// Path is the archive directory; empty disables archiving.
	Path string
	// RetentionDays bounds how long archived uploads are kept.
	RetentionDays int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogJSON        bool
}

// Load reads configuration from the environment, consulting a .env file when
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			CORSOrigins:        []string{getEnv("CORS_ORIGIN", "*")},
			SeedDemoData:       getEnvAsBool("SEED_DEMO_DATA", true),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "bachatbox"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Archive: ArchiveConfig{
			Path:          getEnv("ARCHIVE_PATH", "./uploads"),
			RetentionDays: getEnvAsInt("ARCHIVE_RETENTION_DAYS", 30),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			LogJSON:        getEnvAsBool("LOG_JSON", false),
		},
	}
	return cfg, nil
}

// UsePostgres reports whether a database was configured.
func (c *DatabaseConfig) UsePostgres() bool {
	return c.URL != "" || c.Host != ""
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
