// Package config provides YAML-based configuration loading for flowboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level flowboard configuration, loaded from flowboard.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Digest   DigestConfig   `yaml:"digest"`
}

// DatabaseConfig holds connection settings for the MySQL-compatible server.
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DigestConfig controls the scheduled unread-notification digest.
type DigestConfig struct {
	Cron      string `yaml:"cron"`       // 5-field cron expression
	MinUnread int    `yaml:"min_unread"` // digest only when unread >= this
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "flowboard"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = "0 8 * * *"
	}
	if c.Digest.MinUnread == 0 {
		c.Digest.MinUnread = 5
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		errs = append(errs, "database.port must be a valid TCP port")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be a valid TCP port")
	}
	if c.Digest.MinUnread < 0 {
		errs = append(errs, "digest.min_unread must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
