package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the sandbox bank server
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig

	// Database Configuration
	Database DatabaseConfig

	// Auth Configuration
	Auth AuthConfig

	// Seed Configuration
	Seed SeedConfig

	// Logging Configuration
	Logging LoggingConfig
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr string // Listen address (host:port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string
}

// SeedConfig points at the optional fixture file loaded on startup
type SeedConfig struct {
	File string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	addr := os.Getenv("SANDBOX_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Database URL - default to a local file, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "tellerdesk.sqlite"
	}

	// Token signing secret. The sandbox is a dev tool, so a missing secret
	// falls back to a fixed value rather than refusing to start.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "tellerdesk-sandbox-secret"
	}

	seedFile := os.Getenv("SEED_FILE")

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr: addr,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Seed: SeedConfig{
			File: seedFile,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
