// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scheme values accepted in ServerConfig.Scheme.
const (
	SchemePlain  = "ws"
	SchemeSecure = "wss"
)

// Reconnect modes accepted in ReconnectConfig.Mode.
const (
	ReconnectAuto   = "auto"
	ReconnectManual = "manual"
)

// Config represents the client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig represents the media server endpoint.
// The port follows the scheme: plaintext and encrypted endpoints use
// distinct well-known ports.
type ServerConfig struct {
	Host               string `yaml:"host" default:"localhost" validate:"required,hostname_rfc1123|ip"`
	Scheme             string `yaml:"scheme" default:"ws" validate:"oneof=ws wss"`
	PlainPort          int    `yaml:"plain_port" default:"8080" validate:"gte=1,lte=65535"`
	SecurePort         int    `yaml:"secure_port" default:"8443" validate:"gte=1,lte=65535"`
	Path               string `yaml:"path" default:"/" validate:"startswith=/"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	DialTimeoutMs      int    `yaml:"dial_timeout_ms" default:"10000" validate:"gte=100,lte=120000"`
}

// AuthConfig holds optional credentials submitted automatically at startup.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ReconnectConfig represents the reconnection policy.
type ReconnectConfig struct {
	Mode        string `yaml:"mode" default:"auto" validate:"oneof=auto manual"`
	DelayMs     int    `yaml:"delay_ms" default:"5000" validate:"gte=1,lte=600000"` // 0 or omitted uses the default
	MaxAttempts int    `yaml:"max_attempts" validate:"gte=0"`
}

// PlaybackConfig represents local playback configuration.
type PlaybackConfig struct {
	SampleIntervalMs int    `yaml:"sample_interval_ms" default:"250" validate:"gte=10,lte=5000"`
	Backend          string `yaml:"backend" default:"auto" validate:"oneof=auto beep null"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return finish(&cfg)
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	cfg.overrideFromEnv()

	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BYTEBEATS_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("BYTEBEATS_SCHEME"); v != "" {
		c.Server.Scheme = strings.ToLower(v)
	}
	if v := os.Getenv("BYTEBEATS_USERNAME"); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv("BYTEBEATS_PASSWORD"); v != "" {
		c.Auth.Password = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Server.PlainPort == c.Server.SecurePort {
		return errors.Newf("plain_port and secure_port must differ (both %d)", c.Server.PlainPort)
	}

	return nil
}

// Secure reports whether the encrypted scheme is selected.
func (s ServerConfig) Secure() bool {
	return s.Scheme == SchemeSecure
}

// Port returns the port matching the selected scheme.
func (s ServerConfig) Port() int {
	if s.Secure() {
		return s.SecurePort
	}
	return s.PlainPort
}

// DialTimeout returns the dial timeout.
func (s ServerConfig) DialTimeout() time.Duration {
	return time.Duration(s.DialTimeoutMs) * time.Millisecond
}

// Delay returns the delay before an automatic reconnect.
func (r ReconnectConfig) Delay() time.Duration {
	return time.Duration(r.DelayMs) * time.Millisecond
}

// Automatic reports whether reconnects happen without user action.
func (r ReconnectConfig) Automatic() bool {
	return r.Mode == ReconnectAuto
}

// SampleInterval returns the progress sampling interval.
func (p PlaybackConfig) SampleInterval() time.Duration {
	return time.Duration(p.SampleIntervalMs) * time.Millisecond
}

// HasCredentials checks if startup credentials are configured.
func (a AuthConfig) HasCredentials() bool {
	return a.Username != ""
}
