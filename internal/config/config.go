package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server config
	Server ServerConfig

	// optional history database
	Database DatabaseConfig

	// CSRF config
	Security SecurityConfig

	// prediction service
	Prediction PredictionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address for the server.
func (s ServerConfig) Address() string {
	return ":" + s.Port
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL disables prediction history.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a history database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	CSRFSecret     string
	TrustedOrigins []string
	SecureCookies  bool // true in production
}

// PredictionConfig holds the external prediction service settings.
type PredictionConfig struct {
	BaseURL string

	// Timeout bounds each outbound request. Zero disables it.
	Timeout time.Duration
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []error

	readTimeout, err := getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	errs = appendErr(errs, err)
	writeTimeout, err := getDurationOrDefault("SERVER_WRITE_TIMEOUT", 45*time.Second)
	errs = appendErr(errs, err)
	idleTimeout, err := getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)
	errs = appendErr(errs, err)

	cfg.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	cfg.Database = DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}

	cfg.Security = SecurityConfig{
		CSRFSecret:     os.Getenv("CSRF_SECRET"),
		TrustedOrigins: strings.Fields(os.Getenv("CSRF_TRUSTED_ORIGINS")),
		SecureCookies:  cfg.IsProduction(),
	}

	predictionTimeout, err := getDurationOrDefault("PREDICTION_TIMEOUT", 30*time.Second)
	errs = appendErr(errs, err)

	cfg.Prediction = PredictionConfig{
		BaseURL: os.Getenv("PREDICTION_BASE_URL"),
		Timeout: predictionTimeout,
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration parse failed:\n%w", errors.Join(errs...))
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and valid.
func (c *Config) validate() error {
	var errs []error

	// CSRF secret must be set and sufficiently long
	if c.Security.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET is required"))
	} else if len(c.Security.CSRFSecret) < 32 {
		errs = append(errs, errors.New("CSRF_SECRET must be at least 32 characters"))
	}

	if c.Prediction.BaseURL == "" {
		errs = append(errs, errors.New("PREDICTION_BASE_URL is required"))
	} else if u, err := url.Parse(c.Prediction.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("PREDICTION_BASE_URL must be an absolute URL (got: %s)", c.Prediction.BaseURL))
	}

	if c.Prediction.Timeout < 0 {
		errs = append(errs, errors.New("PREDICTION_TIMEOUT must not be negative"))
	}

	// The response is written after the prediction returns, so the write
	// deadline has to outlast it.
	if c.Server.WriteTimeout > 0 && c.Prediction.Timeout > 0 && c.Server.WriteTimeout <= c.Prediction.Timeout {
		errs = append(errs, fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed PREDICTION_TIMEOUT (%s)", c.Server.WriteTimeout, c.Prediction.Timeout))
	}

	// Validate environment is a known value
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	// Combine all errors
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the .env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

// MustLoad is like Load but panics on error.
// Used in main() where its required to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
