// Package config loads and validates client configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the journal client.
// Values are populated by Load from environment variables, with a `.env`
// file in the working directory applied first when present.
type Config struct {
	// APIBaseURL is the base URL of the remote journal server. Required.
	APIBaseURL string

	// HTTPTimeout bounds every API request. Defaults to 15s.
	HTTPTimeout time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// TokenFile is where the CLI keeps the session token between runs.
	// Defaults to ~/.travel-journal/token.
	TokenFile string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		TokenFile: getEnv("TOKEN_FILE", defaultTokenFile()),
	}

	var missing []string

	cfg.APIBaseURL = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if cfg.APIBaseURL == "" {
		missing = append(missing, "API_BASE_URL")
	}

	timeout := getEnv("HTTP_TIMEOUT", "15s")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", timeout, err)
	}
	cfg.HTTPTimeout = d

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultTokenFile places the token under the user's home directory, falling
// back to the working directory when the home directory cannot be determined.
func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".travel-journal-token"
	}
	return filepath.Join(home, ".travel-journal", "token")
}
