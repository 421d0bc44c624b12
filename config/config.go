package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server configuration settings
type Config struct {
	Host                string
	Port                string
	AllowedOrigins      []string
	ProductsFile        string
	SettingsFile        string
	StaticDir           string
	FetchTimeout        time.Duration
	UserAgent           string
	RateLimitPerSecond  float64
	MaxConcurrentChecks int
	MaxTaskWorkers      int
}

// DefaultUserAgent mirrors a desktop Chrome so the target site serves the
// same markup it serves real browsers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Host:                getEnv("HOST", "0.0.0.0"),
		Port:                getEnv("PORT", "8080"),
		AllowedOrigins:      splitCSV(getEnv("ALLOWED_ORIGINS", "*")),
		ProductsFile:        getEnv("PRODUCTS_FILE", "products.json"),
		SettingsFile:        getEnv("SETTINGS_FILE", "settings.json"),
		StaticDir:           getEnv("STATIC_DIR", "static"),
		FetchTimeout:        getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		UserAgent:           getEnv("SCRAPER_USER_AGENT", DefaultUserAgent),
		RateLimitPerSecond:  getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
		MaxConcurrentChecks: getEnvInt("MAX_CONCURRENT_CHECKS", 4),
		MaxTaskWorkers:      getEnvInt("MAX_TASK_WORKERS", 2),
	}
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
