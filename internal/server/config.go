// Package server provides configuration loaded from the environment, with
// sanitization that clamps nonsense values back to safe defaults.
package server

import (
	"fmt"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/samber/lo"
)

// Config holds the runtime settings for the chat server.
type Config struct {
	Addr           string `env:"SERVER_ADDR,default=:8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=*"`
	DefaultRoom    string `env:"DEFAULT_ROOM,default=general"`
	HistoryLimit   int    `env:"HISTORY_LIMIT,default=100"`
	SendBuffer     int    `env:"SEND_BUFFER,default=256"`
	MaxMessageSize int64  `env:"MAX_MESSAGE_SIZE,default=4096"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}

// LoadConfig reads the configuration from the environment. Values that make
// no sense (a zero history cap, a negative buffer) are clamped to defaults
// rather than rejected.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading config from environment: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

// DefaultConfig returns the configuration the server runs with when the
// environment sets nothing.
func DefaultConfig() Config {
	var cfg Config
	cfg.sanitize()
	return cfg
}

func (c *Config) sanitize() {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = ":8080"
	}
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		c.AllowedOrigins = "*"
	}
	if strings.TrimSpace(c.DefaultRoom) == "" {
		c.DefaultRoom = "general"
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
}

// Origins returns the configured origin allow-list. A single "*" entry
// admits any origin.
func (c Config) Origins() []string {
	origins := lo.FilterMap(strings.Split(c.AllowedOrigins, ","), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
