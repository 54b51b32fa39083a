// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is given.
const EnvironmentVariable = "RENDEZVOUS_CONFIG"

// Config is the complete relay configuration.
type Config struct {
	Listen  ListenConfig  `yaml:"listen"`
	Mailbox MailboxConfig `yaml:"mailbox"`
	Relay   RelayConfig   `yaml:"relay"`
	Log     LogConfig     `yaml:"log"`
}

// ListenConfig is the HTTP listen address.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// TrustProxyHeaders takes the client address and scheme from
	// X-Forwarded-For, X-Real-IP and X-Forwarded-Proto. Enable only
	// behind a reverse proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// Address returns host:port suitable for net.Listen.
func (l ListenConfig) Address() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// MailboxConfig configures the mailbox registry.
type MailboxConfig struct {
	// QueueCapacity bounds each direction of every mailbox.
	QueueCapacity int `yaml:"queue_capacity"`

	// IdleExpiry removes mailboxes with no connected role after this
	// long. Zero disables expiry: mailboxes live until shutdown.
	IdleExpiry time.Duration `yaml:"idle_expiry"`

	// SweepInterval is how often idle mailboxes are looked for.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// RelayConfig configures per-connection relay behavior.
type RelayConfig struct {
	// MaxMessageBytes is the websocket read limit. A larger inbound
	// message ends the connection.
	MaxMessageBytes int64 `yaml:"max_message_bytes"`

	// ResetTimeout bounds the attempt to tell the peer that this
	// side disconnected.
	ResetTimeout time.Duration `yaml:"reset_timeout"`

	// MessagesPerSecond limits inbound messages per connection.
	// Zero means unlimited.
	MessagesPerSecond float64 `yaml:"messages_per_second"`
	MessageBurst      int     `yaml:"message_burst"`

	// AllowedOrigins lists the Origin header values accepted on
	// websocket upgrade. "*" accepts any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Host: "127.0.0.1",
			Port: 8910,
		},
		Mailbox: MailboxConfig{
			QueueCapacity: 32,
			SweepInterval: time.Minute,
		},
		Relay: RelayConfig{
			MaxMessageBytes: 64 << 10,
			ResetTimeout:    5 * time.Second,
			MessageBurst:    16,
			AllowedOrigins:  []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from the file named by RENDEZVOUS_CONFIG.
// If the variable is unset, Load returns [Default].
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Values absent from the file
// keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		errs = append(errs, fmt.Errorf("listen.port %d out of range", c.Listen.Port))
	}

	if c.Mailbox.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("mailbox.queue_capacity must be at least 1, got %d", c.Mailbox.QueueCapacity))
	}
	if c.Mailbox.IdleExpiry < 0 {
		errs = append(errs, fmt.Errorf("mailbox.idle_expiry must not be negative"))
	}
	if c.Mailbox.IdleExpiry > 0 && c.Mailbox.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("mailbox.sweep_interval must be positive when idle_expiry is set"))
	}

	if c.Relay.MaxMessageBytes < 1 {
		errs = append(errs, fmt.Errorf("relay.max_message_bytes must be positive"))
	}
	if c.Relay.ResetTimeout <= 0 {
		errs = append(errs, fmt.Errorf("relay.reset_timeout must be positive"))
	}
	if c.Relay.MessagesPerSecond < 0 {
		errs = append(errs, fmt.Errorf("relay.messages_per_second must not be negative"))
	}
	if c.Relay.MessagesPerSecond > 0 && c.Relay.MessageBurst < 1 {
		errs = append(errs, fmt.Errorf("relay.message_burst must be at least 1 when rate limiting"))
	}
	if len(c.Relay.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("relay.allowed_origins must not be empty (use \"*\" to allow any)"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
