// Package config manages application configuration for the Manifestor API.
//
// Configuration is read from environment variables into tagged structs with
// github.com/caarlos0/env. In development a .env file is loaded first by
// cmd/server.
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: access token signing and validation
//   - AuthConfig: reauthentication window, session cleanup, sign-in rate limit
//   - PreferencesConfig: path of the local SQLite preference store
//   - ReminderConfig: daily reminder dispatch and its time zone
//
// Validate reports every problem at once via errors.Join.
package config
