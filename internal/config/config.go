// Package config holds all recall configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all recall configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	NLP      NLPConfig      `yaml:"nlp"`
	Decay    DecayConfig    `yaml:"decay"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type EngineConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	UpdateThreshold     float64 `yaml:"update_threshold"`
	DeleteThreshold     float64 `yaml:"delete_threshold"`
	LinkingThreshold    float64 `yaml:"linking_threshold"`
	MaxLinksPerMemory   int     `yaml:"max_links_per_memory"`
}

type NLPConfig struct {
	// URL of an optional entity-extraction backend. Empty means pattern-only.
	URL string `yaml:"url"`
}

type DecayConfig struct {
	Enabled bool `yaml:"enabled"`
	// Schedule is a cron expression for the decay sweep.
	Schedule string `yaml:"schedule"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38100,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Engine: EngineConfig{
			SimilarityThreshold: 0.7,
			UpdateThreshold:     0.8,
			DeleteThreshold:     0.9,
			LinkingThreshold:    0.6,
			MaxLinksPerMemory:   10,
		},
		Decay: DecayConfig{
			Enabled:  true,
			Schedule: "@hourly",
		},
	}
}

// DefaultPath returns the default config file path: ~/.recall/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".recall", "config.yaml"), nil
}

// Load reads the config file at path, layered over defaults. A missing file
// is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
