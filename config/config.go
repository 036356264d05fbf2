// Package config provides configuration management for the pst web tool.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Addr          string        // listen address of the web tool
	LogLevel      string        // debug, info, warn, error
	DevMode       bool          // pretty logs
	ScenariosFile string        // named scenario registry, empty for the built-in one
	ScenariosPath string        // JSONPath of the scenarios in a JSON registry
	SessionTTL    time.Duration // how long results stay downloadable
	MaxUploadMB   int64         // maximum upload size, in MiB
	Currency      string        // reporting currency
}

// Load reads the configuration from the environment, after loading the .env
// file of the current directory if there is one.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	ttl, err := getEnvAsDuration("PST_SESSION_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvAsInt("PST_MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:          getEnv("PST_ADDR", ":8080"),
		LogLevel:      getEnv("PST_LOG_LEVEL", "info"),
		DevMode:       getEnvAsBool("PST_DEV_MODE", false),
		ScenariosFile: getEnv("PST_SCENARIOS_FILE", ""),
		ScenariosPath: getEnv("PST_SCENARIOS_PATH", ""),
		SessionTTL:    ttl,
		MaxUploadMB:   int64(maxUpload),
		Currency:      strings.ToUpper(getEnv("PST_CURRENCY", money.USD)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("PST_ADDR is empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("PST_SESSION_TTL must be positive, got %v", c.SessionTTL)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("PST_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("PST_CURRENCY: unknown currency %q", c.Currency)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("PST_LOG_LEVEL: unknown level %q", c.LogLevel)
	}
	return nil
}

// MaxUploadBytes returns the maximum upload size in bytes.
func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvAsBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
