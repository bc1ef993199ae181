// Package config loads the settings for the request-signer server: an optional YAML
// file supplies the base values, and environment variables override them.
//
// App secrets are not configuration: every signing call carries its own.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is read from YAML, then overridden from the environment. Each section's
// variables are prefixed with the section name, e.g. HTTP_PORT or RMQ_REQUEST_QUEUE.
type Config struct {
	Http     HttpConfig `yaml:"http"`
	Grpc     GrpcConfig `yaml:"grpc"`
	Rmq      RmqConfig  `yaml:"rmq"`
	LogLevel string     `yaml:"logLevel" split_words:"true"`
}

type HttpConfig struct {
	BindAddr string `yaml:"bindAddr" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
}

type GrpcConfig struct {
	Enabled  bool   `yaml:"enabled" split_words:"true"`
	BindAddr string `yaml:"bindAddr" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
}

type RmqConfig struct {
	Enabled        bool   `yaml:"enabled" split_words:"true"`
	Host           string `yaml:"host" split_words:"true"`
	Port           int    `yaml:"port" split_words:"true"`
	Vhost          string `yaml:"vhost" split_words:"true"`
	User           string `yaml:"user" split_words:"true"`
	Password       string `yaml:"password" split_words:"true"`
	RequestQueue   string `yaml:"requestQueue" split_words:"true"`
	EventsExchange string `yaml:"eventsExchange" split_words:"true"`
}

func Default() Config {
	return Config{
		Http: HttpConfig{
			BindAddr: "",
			Port:     5010,
		},
		Grpc: GrpcConfig{
			Enabled:  true,
			BindAddr: "",
			Port:     5011,
		},
		Rmq: RmqConfig{
			Enabled:        false,
			Host:           "localhost",
			Port:           5672,
			Vhost:          "/",
			User:           "guest",
			Password:       "guest",
			RequestQueue:   "sign-requests",
			EventsExchange: "signing-events",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies any environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	// Unset variables leave the file's values in place
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Http.Port <= 0 {
		return fmt.Errorf("http port must be positive; got %d", c.Http.Port)
	}
	if c.Grpc.Enabled && c.Grpc.Port <= 0 {
		return fmt.Errorf("grpc port must be positive; got %d", c.Grpc.Port)
	}
	if c.Grpc.Enabled && c.Grpc.Port == c.Http.Port && c.Grpc.BindAddr == c.Http.BindAddr {
		return fmt.Errorf("grpc and http can't both listen on %s:%d", c.Http.BindAddr, c.Http.Port)
	}
	if c.Rmq.Enabled {
		if c.Rmq.Host == "" {
			return fmt.Errorf("rmq host is required when rmq is enabled")
		}
		if c.Rmq.RequestQueue == "" {
			return fmt.Errorf("rmq request queue is required when rmq is enabled")
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level resolves LogLevel to a slog.Level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
