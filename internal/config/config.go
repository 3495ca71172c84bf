package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	DatabaseDriver string `mapstructure:"database_driver" yaml:"database_driver" validate:"oneof=sqlite3 sqlite memory"`
	DatabasePath   string `mapstructure:"database_path" yaml:"database_path" validate:"required_unless=DatabaseDriver memory"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret" validate:"required,min=8"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl" validate:"gt=0"`

	MaxMessageBytes int `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gte=0"`
	SendRateLimit   int `mapstructure:"send_rate_limit" yaml:"send_rate_limit" validate:"gte=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabaseDriver:    "sqlite3",
		DatabasePath:      "campuschat.db",
		JWTSecret:         "change-me-in-production",
		JWTIssuer:         "campuschat",
		JWTAudience:       "campuschat",
		JWTTTL:            24 * time.Hour,
		MaxMessageBytes:   4096,
		SendRateLimit:     60,
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabaseDriver != "" {
		c.DatabaseDriver = other.DatabaseDriver
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.JWTTTL != 0 {
		c.JWTTTL = other.JWTTTL
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.SendRateLimit != 0 {
		c.SendRateLimit = other.SendRateLimit
	}
}
