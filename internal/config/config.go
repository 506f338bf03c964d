package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ember configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fuse    FuseConfig    `yaml:"fuse"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// FuseConfig controls the per-session cut budget.
type FuseConfig struct {
	Max            int           `yaml:"max"`
	RechargeWindow time.Duration `yaml:"recharge_window"` // e.g. "1h", "90m"
}

type JournalConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	Path   string `yaml:"path"`   // sqlite only; must be ":memory:"
}

type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 5000,
		},
		Fuse: FuseConfig{
			Max:            3,
			RechargeWindow: time.Hour,
		},
		Journal: JournalConfig{
			Driver: "sqlite",
			Path:   ":memory:",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file and overlays it on the defaults. Keys missing from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. PORT is honoured
// for compatibility with PaaS launchers.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("EMBER_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("EMBER_FUSE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMBER_FUSE_MAX: %w", err)
		}
		c.Fuse.Max = n
	}
	if v := os.Getenv("EMBER_RECHARGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EMBER_RECHARGE: %w", err)
		}
		c.Fuse.RechargeWindow = d
	}
	if v := os.Getenv("EMBER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return c.Validate()
}

// Validate rejects configurations the engine cannot honour.
func (c *Config) Validate() error {
	if c.Fuse.Max < 0 {
		return fmt.Errorf("fuse.max must be >= 0, got %d", c.Fuse.Max)
	}
	if c.Fuse.RechargeWindow <= 0 {
		return fmt.Errorf("fuse.recharge_window must be positive, got %s", c.Fuse.RechargeWindow)
	}
	switch c.Journal.Driver {
	case "memory":
	case "sqlite":
		// Sessions live for the process lifetime only; a file-backed
		// journal would outlive them.
		if c.Journal.Path != "" && c.Journal.Path != ":memory:" {
			return fmt.Errorf("journal.path %q: only :memory: is supported", c.Journal.Path)
		}
	default:
		return fmt.Errorf("unknown journal driver: %q", c.Journal.Driver)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
