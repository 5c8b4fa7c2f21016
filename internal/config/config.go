package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Inventory InventoryConfig
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds postgres connection options.
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token-signing options.
type AuthConfig struct {
	JWTSecret  string
	TokenHours int
}

// InventoryConfig holds the domain thresholds used by the warehouse and
// transfer modules.
type InventoryConfig struct {
	// ExpiryWarningDays is how close to expiry a batch is flagged as expiring soon.
	ExpiryWarningDays int
	// UrgentWindowHours is how close to its required-by date a transfer is flagged urgent.
	UrgentWindowHours int
}

// Load reads environment variables (optionally from .env) and materializes a Config.
func Load() (*Config, error) {
	// Missing .env files are acceptable when configuration comes from the
	// environment directly.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Auth: AuthConfig{
			JWTSecret:  secret,
			TokenHours: getenvIntWithDefault("JWT_TOKEN_HOURS", 24),
		},
		Inventory: InventoryConfig{
			ExpiryWarningDays: getenvIntWithDefault("EXPIRY_WARNING_DAYS", 30),
			UrgentWindowHours: getenvIntWithDefault("URGENT_WINDOW_HOURS", 48),
		},
	}, nil
}

func getenvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
