package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Server.Framing {
	case "raw", "length":
	default:
		return fmt.Errorf("server.framing must be raw or length, got %q", c.Server.Framing)
	}
	if c.Server.ReadBufferSize < 1 || c.Server.ReadBufferSize > 0xFFFF {
		return fmt.Errorf("server.read_buffer_size must be between 1 and 65535, got %d", c.Server.ReadBufferSize)
	}
	if c.Server.WriteTimeout < 0 {
		return errors.New("server.write_timeout must be >= 0")
	}
	if c.Server.EventBuffer < 1 {
		return errors.New("server.event_buffer must be >= 1")
	}
	if c.Server.WSAddr != "" && !strings.HasPrefix(c.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path must start with /, got %q", c.Server.WSPath)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics.enabled is true")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// SlogLevel maps log.level to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q is invalid", l.Level)
	}
	return lvl, nil
}
