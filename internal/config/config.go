// Package config loads the agent configuration from a YAML or TOML file and
// the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Default file names tried by Discover, in order.
var DefaultFiles = []string{"sheetpilot.yaml", "sheetpilot.yml", "sheetpilot.toml"}

// Environment overrides.
const (
	EnvPlannerURL    = "SHEETPILOT_PLANNER_URL"
	EnvRedisURL      = "SHEETPILOT_REDIS_URL"
	EnvLogLevel      = "SHEETPILOT_LOG_LEVEL"
	EnvEncryptionKey = "SHEETPILOT_ENCRYPTION_KEY"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full agent configuration.
type Config struct {
	Planner   PlannerConfig   `yaml:"planner" toml:"planner" json:"planner"`
	Runner    RunnerConfig    `yaml:"runner" toml:"runner" json:"runner"`
	Workbook  WorkbookConfig  `yaml:"workbook" toml:"workbook" json:"workbook"`
	Store     StoreConfig     `yaml:"store" toml:"store" json:"store"`
	Redis     RedisConfig     `yaml:"redis" toml:"redis" json:"redis"`
	Server    ServerConfig    `yaml:"server" toml:"server" json:"server"`
	Scenarios ScenariosConfig `yaml:"scenarios" toml:"scenarios" json:"scenarios"`
	Tools     ToolsConfig     `yaml:"tools" toml:"tools" json:"tools"`
	Log       LogConfig       `yaml:"log" toml:"log" json:"log"`
}

type PlannerConfig struct {
	URL          string        `yaml:"url" toml:"url" json:"url"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	SnapshotRows int           `yaml:"snapshot_rows" toml:"snapshot_rows" json:"snapshot_rows"`
}

type RunnerConfig struct {
	MaxRounds int `yaml:"max_rounds" toml:"max_rounds" json:"max_rounds"`
}

// WorkbookConfig selects the grid. An empty path keeps the grid in memory.
type WorkbookConfig struct {
	Path  string `yaml:"path" toml:"path" json:"path"`
	Sheet string `yaml:"sheet" toml:"sheet" json:"sheet"`
}

type StoreConfig struct {
	Kind          string   `yaml:"kind" toml:"kind" json:"kind"`
	Path          string   `yaml:"path" toml:"path" json:"path"`
	EncryptionKey string   `yaml:"encryption_key" toml:"encryption_key" json:"-"`
	PIIPatterns   []string `yaml:"pii_patterns" toml:"pii_patterns" json:"pii_patterns,omitempty"`
}

type RedisConfig struct {
	URL    string        `yaml:"url" toml:"url" json:"url"`
	Prefix string        `yaml:"prefix" toml:"prefix" json:"prefix"`
	TTL    time.Duration `yaml:"ttl" toml:"ttl" json:"ttl"`
}

type ServerConfig struct {
	Port int `yaml:"port" toml:"port" json:"port"`
}

type ScenariosConfig struct {
	Dir string `yaml:"dir" toml:"dir" json:"dir"`
}

// ToolsConfig points at a tools file of external ToolAction commands.
type ToolsConfig struct {
	File string `yaml:"file" toml:"file" json:"file"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Planner: PlannerConfig{
			URL:          "http://localhost:8000",
			Timeout:      60 * time.Second,
			SnapshotRows: domain.DefaultSnapshotRows,
		},
		Runner:   RunnerConfig{MaxRounds: domain.DefaultMaxRounds},
		Workbook: WorkbookConfig{Sheet: "Sheet1"},
		Store:    StoreConfig{Kind: StoreMemory, Path: ".sheetpilot/sessions"},
		Redis:    RedisConfig{Prefix: "sheetpilot:session:"},
		Server:   ServerConfig{Port: 8080},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies the environment.
// An empty path tries DefaultFiles in the working directory; none existing is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = Discover(".")
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Discover returns the first default config file found in dir, or "".
func Discover(dir string) string {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPlannerURL); ok && v != "" {
		c.Planner.URL = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Redis.URL = v
		if c.Store.Kind == "" || c.Store.Kind == StoreMemory {
			c.Store.Kind = StoreRedis
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvEncryptionKey); ok && v != "" {
		c.Store.EncryptionKey = v
	}
}

// Validate checks values that would only fail later at startup.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("store.kind redis requires redis.url")
		}
	default:
		return fmt.Errorf("unknown store.kind %q", c.Store.Kind)
	}
	if c.Runner.MaxRounds < 1 {
		return fmt.Errorf("runner.max_rounds must be at least 1")
	}
	if c.Planner.SnapshotRows < 0 {
		return fmt.Errorf("planner.snapshot_rows must not be negative")
	}
	for _, p := range c.Store.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("store.pii_patterns: %w", err)
		}
	}
	return nil
}
