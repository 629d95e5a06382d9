package redis

// Config holds Redis connection settings
type Config struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0
	URL string

	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns sensible defaults for Redis storage
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
