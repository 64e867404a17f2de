// Package config models hearth.yml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "10m" or "12h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config models the full configuration file.
type Config struct {
	Cluster string `yaml:"cluster"`
	Locale  string `yaml:"locale"`

	Server struct {
		Port   int    `yaml:"port"`
		Secret string `yaml:"secret"`
	} `yaml:"server"`

	Journal struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"journal"`

	Definitions struct {
		// Dir holds .cue form definitions. Empty loads the embedded
		// demo set.
		Dir string `yaml:"dir"`
	} `yaml:"definitions"`

	Catalog struct {
		// File points at a YAML catalog of currencies, items, roles and
		// stats. Empty loads the built-in demo seed.
		File string `yaml:"file"`
	} `yaml:"catalog"`

	Sessions struct {
		MaxAge        Duration `yaml:"max_age"`
		IdleTimeout   Duration `yaml:"idle_timeout"`
		SweepInterval Duration `yaml:"sweep_interval"`
	} `yaml:"sessions"`
}

// Journal drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Cluster = "hearth"
	cfg.Locale = "en"
	cfg.Server.Port = 8080
	cfg.Journal.Driver = DriverMemory
	cfg.Sessions.MaxAge = Duration(12 * time.Hour)
	cfg.Sessions.IdleTimeout = Duration(10 * time.Minute)
	cfg.Sessions.SweepInterval = Duration(30 * time.Second)
	return &cfg
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Cluster == "" {
		return fmt.Errorf("config.cluster is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config.server.port must be between 1 and 65535")
	}
	switch c.Journal.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Journal.DSN == "" {
			return fmt.Errorf("config.journal.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config.journal.driver must be %q or %q", DriverMemory, DriverSQLite)
	}
	if c.Sessions.MaxAge < 0 || c.Sessions.IdleTimeout < 0 || c.Sessions.SweepInterval < 0 {
		return fmt.Errorf("config.sessions durations must not be negative")
	}
	return nil
}

// FromYAML parses and validates config from raw YAML bytes. Fields the
// YAML does not set keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional reads the config at path, or returns defaults if no file
// exists there.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}
