package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/aipface/pkg/aipsdk"
)

type Config struct {
	AppID     string `yaml:"app_id"`     // Required: application id from the AI console
	APIKey    string `yaml:"api_key"`    // Required: API key, used as client_id and access key id
	SecretKey string `yaml:"secret_key"` // Required: secret key

	BaseURL     string        `yaml:"base_url"`     // Optional: API host (default: https://aip.baidubce.com)
	Timeout     time.Duration `yaml:"timeout"`      // Optional: per-call timeout (default: 60s)
	RateLimit   bool          `yaml:"rate_limit"`   // Optional: throttle calls to RATELIMIT_AIP_* (default: false)
	MetricsFile string        `yaml:"metrics_file"` // Optional: write Prometheus metrics here on exit
	Env         string        `yaml:"env"`          // Environment (dev, staging, prod) (default: prod)
	LogLevel    string        `yaml:"log_level"`    // Log level (debug, info, warn, error) (default: warn)
	LogFormat   string        `yaml:"log_format"`   // Log format (json, text) (default: text)
}

// defaultConfig holds the values used when neither the file nor the
// environment set a field.
func defaultConfig() Config {
	return Config{
		BaseURL:   aipsdk.DefaultBaseURL,
		Timeout:   aipsdk.DefaultTimeout,
		Env:       "prod",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by AIP_CONFIG_FILE (if any), then environment variables.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("AIP_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.AppID = getEnvOrDefault("AIP_APP_ID", cfg.AppID)
	cfg.APIKey = getEnvOrDefault("AIP_API_KEY", cfg.APIKey)
	cfg.SecretKey = getEnvOrDefault("AIP_SECRET_KEY", cfg.SecretKey)
	cfg.BaseURL = getEnvOrDefault("AIP_BASE_URL", cfg.BaseURL)
	cfg.Timeout = getEnvDurationOrDefault("AIP_TIMEOUT", cfg.Timeout)
	cfg.RateLimit = getEnvBoolOrDefault("AIP_RATE_LIMIT", cfg.RateLimit)
	cfg.MetricsFile = getEnvOrDefault("AIP_METRICS_FILE", cfg.MetricsFile)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

// Validate reports the first missing credential.
func (c Config) Validate() error {
	switch {
	case c.AppID == "":
		return fmt.Errorf("app id is required (AIP_APP_ID)")
	case c.APIKey == "":
		return fmt.Errorf("api key is required (AIP_API_KEY)")
	case c.SecretKey == "":
		return fmt.Errorf("secret key is required (AIP_SECRET_KEY)")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1m", "30s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
