// Package config provides application configuration loading for the VPN backend.
// Configuration is read from a YAML file with sensible defaults applied for
// missing values, and secrets can be overridden through environment variables
// so they never have to live in the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler using time.ParseDuration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the complete backend configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains persistence settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// TelegramConfig contains Telegram bot integration settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// JWTConfig contains API token settings.
type JWTConfig struct {
	Secret      string   `yaml:"secret"`
	TokenExpiry Duration `yaml:"token_expiry"`
}

// CORSConfig contains cross-origin settings for the WebApp frontend.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Database: DatabaseConfig{
			Path: "vpn.db",
		},
		JWT: JWTConfig{
			TokenExpiry: Duration(24 * time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads configuration from the given YAML file path.
// A missing file is not an error: defaults are returned so the server can
// start with nothing but environment variables. After parsing, the
// TELEGRAM_BOT_TOKEN and JWT_SECRET environment variables override their
// file counterparts when set.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if cfg.JWT.TokenExpiry <= 0 {
		cfg.JWT.TokenExpiry = Duration(24 * time.Hour)
	}

	return cfg, nil
}

// Addr returns the host:port listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
