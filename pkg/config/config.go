package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	IsProduction  bool
	IsDevelopment bool

	// Discord Bot Configuration
	DiscordToken  string
	CommandPrefix string
	OwnerID       string

	// MongoDB Configuration
	MongoDBURI string

	// User resolution
	SelectTimeout time.Duration
	SelfWords     []string
	EveryoneWords []string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		DiscordToken:  getEnv("DISCORD_TOKEN", ""),
		CommandPrefix: getEnv("COMMAND_PREFIX", "+"),
		OwnerID:       getEnv("OWNER_ID", ""),
		MongoDBURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017/whobot"),
		SelfWords:     getEnvList("SELF_WORDS"),
		EveryoneWords: getEnvList("EVERYONE_WORDS"),
	}

	// Derived properties
	cfg.IsProduction = cfg.Environment == "production"
	cfg.IsDevelopment = !cfg.IsProduction

	// Parse numeric values
	seconds, err := strconv.Atoi(getEnv("SELECT_TIMEOUT_SECONDS", "120"))
	if err != nil || seconds <= 0 {
		seconds = 120
	}
	cfg.SelectTimeout = time.Duration(seconds) * time.Second

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList parses a comma-separated environment variable. An unset
// variable yields nil so callers can fall back to their defaults.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
