// Package config loads, normalizes, and validates the TOML configuration
// shared by every shelflink command.
package config
