package cli

import (
	"os"
	"time"
)

// Config holds CLI configuration
type Config struct {
	// Addr is the lobby's TCP address
	Addr string
	// AdminURL is the base URL of the admin/diagnostics HTTP server
	AdminURL string
	// Username and Password authenticate the session before the first
	// command runs; commands that need no login work without them
	Username string
	Password string
	// Role is "player" or "developer"
	Role string
	// Output selects the format: text or json
	Output string
	// Timeout bounds each request/response round trip
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Addr:     getEnvOrDefault("GAMEHUB_ADDR", "127.0.0.1:5555"),
		AdminURL: getEnvOrDefault("GAMEHUB_ADMIN", "http://127.0.0.1:8080"),
		Username: os.Getenv("GAMEHUB_USER"),
		Password: os.Getenv("GAMEHUB_PASSWORD"),
		Role:     getEnvOrDefault("GAMEHUB_ROLE", "player"),
		Output:   "text",
		Timeout:  30 * time.Second,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
