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
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Finnhub   FinnhubConfig
	Advisor   AdvisorConfig
	Session   SessionConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// FinnhubConfig holds the quote and news provider settings.
// An empty APIKey disables all provider calls.
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
}

// AdvisorConfig holds the language-model advisor settings.
// An empty APIKey disables all advisor calls.
type AdvisorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds session token settings
type SessionConfig struct {
	Key string // base64 fernet key; a random key is generated when empty
	TTL time.Duration
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	NewsRefreshSchedule string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	advisorTimeout, err := getEnvDuration("ADVISOR_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := getEnvDuration("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	logPretty, err := getEnvBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/finpilot.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost",
			}),
		},
		Finnhub: FinnhubConfig{
			APIKey:  os.Getenv("FINNHUB_API_KEY"),
			BaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		},
		Advisor: AdvisorConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
			Timeout: advisorTimeout,
		},
		Session: SessionConfig{
			Key: os.Getenv("SESSION_KEY"),
			TTL: sessionTTL,
		},
		Scheduler: SchedulerConfig{
			NewsRefreshSchedule: getEnv("NEWS_REFRESH_SCHEDULE", "@every 1m"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: logPretty,
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

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
