package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Preferences PreferencesConfig
	Reminder    ReminderConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT"          envDefault:"8080"`
	Env             string        `env:"SERVER_ENV"           envDefault:"development"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"  envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Scheme    string `env:"DB_SCHEME"    envDefault:"ws"`
	Host      string `env:"DB_HOST"      envDefault:"localhost"`
	Port      string `env:"DB_PORT"      envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"manifestor"`
	Database  string `env:"DB_DATABASE"  envDefault:"main"`
	User      string `env:"DB_USER"      envDefault:"root"`
	Password  string `env:"DB_PASSWORD"  envDefault:"root"`
}

// JWTConfig holds JWT signing settings
type JWTConfig struct {
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./keys/private.pem"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"  envDefault:"./keys/public.pem"`
	ExpirationMins int    `env:"JWT_EXPIRATION_MINS"  envDefault:"60"`
	Issuer         string `env:"JWT_ISSUER"           envDefault:"manifestor.forgo.software"`
}

// AuthConfig holds identity settings
type AuthConfig struct {
	// ReauthWindow is how recent a credential check must be for
	// sensitive operations such as deleting the identity
	ReauthWindow    time.Duration `env:"AUTH_REAUTH_WINDOW"      envDefault:"5m"`
	SessionCleanup  time.Duration `env:"AUTH_SESSION_CLEANUP"    envDefault:"1h"`
	SignInRateLimit int           `env:"AUTH_SIGNIN_RATE_LIMIT"  envDefault:"10"`
}

// PreferencesConfig holds the local preference store settings
type PreferencesConfig struct {
	Path string `env:"PREFERENCES_PATH" envDefault:"./data/preferences.db"`
}

// ReminderConfig holds daily reminder settings
type ReminderConfig struct {
	Enabled bool `env:"REMINDER_ENABLED" envDefault:"true"`
	// Location is the IANA zone that reminder times and streak days are
	// read in
	Location string `env:"REMINDER_LOCATION" envDefault:"UTC"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// ReminderLocation resolves Reminder.Location, falling back to UTC
func (c *Config) ReminderLocation() *time.Location {
	loc, err := time.LoadLocation(c.Reminder.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	switch c.Database.Scheme {
	case "ws", "wss", "http", "https":
	default:
		errs = append(errs, fmt.Errorf("DB_SCHEME must be ws, wss, http or https, got '%s'", c.Database.Scheme))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation - critical for production
	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	if c.Auth.ReauthWindow <= 0 {
		errs = append(errs, errors.New("AUTH_REAUTH_WINDOW must be positive"))
	}
	if c.Auth.SignInRateLimit <= 0 {
		errs = append(errs, errors.New("AUTH_SIGNIN_RATE_LIMIT must be positive"))
	}

	if c.Preferences.Path == "" {
		errs = append(errs, errors.New("PREFERENCES_PATH is required"))
	}
	if _, err := time.LoadLocation(c.Reminder.Location); err != nil {
		errs = append(errs, fmt.Errorf("REMINDER_LOCATION is not a known zone: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
