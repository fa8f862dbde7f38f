package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort        = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBins            = 256
)

// Config is the top-level worker configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Worker WorkerConfig `yaml:"worker"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the HTTP/websocket boundary settings.
type ServerConfig struct {
	// HTTPPort is the port the websocket endpoint listens on.
	HTTPPort int `yaml:"http_port"`

	// ShutdownTimeout bounds graceful teardown of in-flight connections.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WorkerConfig holds histogram engine settings.
type WorkerConfig struct {
	// DefaultBins is the bucket count used when a request carries no
	// bins option.
	DefaultBins int `yaml:"default_bins"`

	// MaxSamples caps the accepted sample buffer length per request.
	// Zero disables the limit.
	MaxSamples int `yaml:"max_samples"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zerolog level string: trace | debug | info | warn | error.
	Level string `yaml:"level"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Worker: WorkerConfig{
			DefaultBins: DefaultBins,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535]")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if cfg.Worker.DefaultBins <= 0 {
		return fmt.Errorf("worker.default_bins must be positive")
	}
	if cfg.Worker.MaxSamples < 0 {
		return fmt.Errorf("worker.max_samples must not be negative")
	}
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	return nil
}
