package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the client configuration
type Config struct {
	API           APIConfig           `yaml:"api"`
	Payment       PaymentConfig       `yaml:"payment"`
	Booking       BookingConfig       `yaml:"booking"`
	Session       SessionConfig       `yaml:"session"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

// APIConfig contains backend gateway settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PaymentConfig contains checkout settings
type PaymentConfig struct {
	Enabled       bool   `yaml:"enabled"`
	PublicKey     string `yaml:"public_key"`
	Currency      string `yaml:"currency"`
	CallbackHost  string `yaml:"callback_host"` // loopback address for the checkout page
	CallbackPort  int    `yaml:"callback_port"` // 0 picks a free port
	OrderAttempts int    `yaml:"order_attempts"`
	OrderDelayMS  int    `yaml:"order_delay_ms"`
	ScriptURL     string `yaml:"script_url"`
}

// BookingConfig contains booking workflow settings
type BookingConfig struct {
	// CheckAvailability asks the backend before submitting instead of
	// trusting only the listed availability flag
	CheckAvailability bool `yaml:"check_availability"`
}

// SessionConfig selects the token store
type SessionConfig struct {
	Store         string `yaml:"store"` // "file", "sqlite", "postgres" or "memory"
	Path          string `yaml:"path"`
	DSN           string `yaml:"dsn"`
	EncryptionKey string `yaml:"encryption_key"`
}

// NotificationsConfig contains email receipt settings
type NotificationsConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings. An empty schedule disables the job.
type SchedulerConfig struct {
	CheckSessionExpiry string `yaml:"check_session_expiry"`
	RefreshInventory   string `yaml:"refresh_inventory"`
}

// Load reads configuration from a YAML file. An empty path skips the file
// and relies on environment variables and defaults.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// API
	if val := os.Getenv("MEDILINK_API_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("MEDILINK_API_TIMEOUT"); val != "" {
		fmt.Sscanf(val, "%d", &c.API.TimeoutSeconds)
	}

	// Payment
	if val := os.Getenv("MEDILINK_PAYMENT_KEY"); val != "" {
		c.Payment.PublicKey = val
		c.Payment.Enabled = true
	}
	if val := os.Getenv("MEDILINK_PAYMENTS"); val != "" {
		c.Payment.Enabled = val == "1" || strings.EqualFold(val, "true")
	}

	if val := os.Getenv("MEDILINK_CHECK_AVAILABILITY"); val != "" {
		c.Booking.CheckAvailability = val == "1" || strings.EqualFold(val, "true")
	}

	// Session
	if val := os.Getenv("SESSION_STORE"); val != "" {
		c.Session.Store = val
	}
	if val := os.Getenv("SESSION_PATH"); val != "" {
		c.Session.Path = val
	}
	if val := os.Getenv("SESSION_DSN"); val != "" {
		c.Session.DSN = val
	}
	if val := os.Getenv("SESSION_KEY"); val != "" {
		c.Session.EncryptionKey = val
	}

	// Notifications
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notifications.SendGridAPIKey = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	// API validation
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid API timeout: %d", c.API.TimeoutSeconds)
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}

	// Payment validation
	if c.Payment.Enabled && c.Payment.PublicKey == "" {
		return fmt.Errorf("payment public key is required when payments are enabled")
	}
	if c.Payment.CallbackPort < 0 || c.Payment.CallbackPort > 65535 {
		return fmt.Errorf("invalid payment callback port: %d", c.Payment.CallbackPort)
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "INR"
	}
	if c.Payment.CallbackHost == "" {
		c.Payment.CallbackHost = "127.0.0.1"
	}
	if c.Payment.OrderAttempts <= 0 {
		c.Payment.OrderAttempts = 5
	}
	if c.Payment.OrderDelayMS <= 0 {
		c.Payment.OrderDelayMS = 500
	}
	if c.Payment.ScriptURL == "" {
		c.Payment.ScriptURL = "https://checkout.razorpay.com/v1/checkout.js"
	}

	// Session validation
	switch c.Session.Store {
	case "":
		c.Session.Store = "file"
	case "file", "sqlite", "memory":
	case "postgres":
		if c.Session.DSN == "" {
			return fmt.Errorf("session DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported session store: %q", c.Session.Store)
	}

	// Notifications defaults
	if c.Notifications.FromEmail == "" {
		c.Notifications.FromEmail = "no-reply@medilink.local"
	}
	if c.Notifications.FromName == "" {
		c.Notifications.FromName = "MediLink"
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}

// GetAPITimeout returns the per-request timeout
func (c *Config) GetAPITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GetOrderDelay returns the delay between payment order lookups
func (c *Config) GetOrderDelay() time.Duration {
	return time.Duration(c.Payment.OrderDelayMS) * time.Millisecond
}

// GetCallbackAddress returns the checkout listener address
func (c *Config) GetCallbackAddress() string {
	return fmt.Sprintf("%s:%d", c.Payment.CallbackHost, c.Payment.CallbackPort)
}
