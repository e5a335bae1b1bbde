package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Backend BackendConfig
	Cache   CacheConfig
	Refresh RefreshConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds the local API listener configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// StoreConfig holds the local SQLite store configuration
type StoreConfig struct {
	Path string
	// FernetKey encrypts the persisted backend session token. Base64,
	// 32 bytes. Empty disables the session store.
	FernetKey string
}

// BackendConfig points at the remote REST backend, the sole authority for
// trades, balances and price history.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig holds market-data cache tuning
type CacheConfig struct {
	// TTL is how long a cached series counts as fresh. 72 hours unless
	// overridden.
	TTL time.Duration
}

// RefreshConfig holds the background refresh intervals
type RefreshConfig struct {
	// BalancePoll is the interval between balance reconciliation polls.
	BalancePoll time.Duration
	// CacheRevalidate is the interval between sweeps that refetch expired
	// series for held symbols.
	CacheRevalidate time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Store: StoreConfig{
			Path:      getEnv("DB_PATH", "./data/portfolio_client.db"),
			FernetKey: getEnv("SESSION_FERNET_KEY", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"),
			Timeout: getDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getInt("CACHE_TTL_HOURS", 72)) * time.Hour,
		},
		Refresh: RefreshConfig{
			BalancePoll:     getDuration("BALANCE_POLL_INTERVAL", 30*time.Second),
			CacheRevalidate: getDuration("CACHE_REVALIDATE_INTERVAL", time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "true") == "true",
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getInt gets an integer environment variable or returns a default value
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration gets a duration environment variable (e.g. "30s") or returns
// a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
