package config

import "time"

// Config is the root configuration for a chat relay instance.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds listener and wire settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	WSAddr         string        `yaml:"ws_addr"` // empty disables the WebSocket gateway
	WSPath         string        `yaml:"ws_path"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Framing        string        `yaml:"framing"` // raw | length
	ReadBufferSize int           `yaml:"read_buffer_size"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	EventBuffer    int           `yaml:"event_buffer"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
