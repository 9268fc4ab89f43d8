// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	Snapshot SnapshotConfig
	Seed     SeedConfig
	Metrics  MetricsConfig
}

// SnapshotConfig configures the optional persistence collaborator.
type SnapshotConfig struct {
	Disabled bool
	DBType   string // sqlite or postgres
	DBPath   string // sqlite file
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SeedConfig toggles sample-data population at startup.
type SeedConfig struct {
	Enabled   bool
	Customers int
}

// MetricsConfig configures the OTLP metrics exporter.
type MetricsConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "waterservice"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Snapshot: SnapshotConfig{
			Disabled: getenvBool("SNAPSHOT_DISABLED", false),
			DBType:   getenv("DATABASE_TYPE", "sqlite"),
			DBPath:   getenv("DATABASE_PATH", "waterservice.db"),
			Host:     getenv("DATABASE_HOST", "localhost"),
			Port:     getenv("DATABASE_PORT", "5432"),
			Name:     getenv("DATABASE_NAME", "waterservice"),
			User:     getenv("DATABASE_USER", "postgres"),
			Password: getenv("DATABASE_PASSWORD", ""),
			SSLMode:  getenv("DATABASE_SSLMODE", "disable"),
		},
		Seed: SeedConfig{
			Enabled:   getenvBool("SEED_SAMPLE_DATA", true),
			Customers: getenvInt("SEED_CUSTOMERS", 40),
		},
		Metrics: MetricsConfig{
			Enabled:          getenvBool("METRICS_ENABLED", false),
			ExporterEndpoint: getenv("METRICS_ENDPOINT", "localhost:4317"),
			ExporterProtocol: strings.ToLower(getenv("METRICS_PROTOCOL", "grpc")),
		},
	}
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
