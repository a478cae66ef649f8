package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// ServerConfig represents web configurator settings
type ServerConfig struct {
	// Addr is the listen address of the HTTP API
	Addr string `yaml:"addr"`

	// SessionDB is the path to the SQLite session database
	SessionDB string `yaml:"session_db"`

	// KeepSessionsDays is the number of days idle sessions are kept (0 = forever)
	KeepSessionsDays int `yaml:"keep_sessions_days"`
}

// Config represents stackforge configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// CollectAll reports every violation instead of stopping at the first one
	CollectAll bool `yaml:"collect_all"`

	// Defaults overrides the built-in default selection per category.
	// Values may be a single value or a list.
	Defaults map[string]models.Values `yaml:"defaults"`

	// Server contains web configurator configuration
	Server ServerConfig `yaml:"server"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogDir:     ".stackforge/logs",
		CollectAll: false,
		Server: ServerConfig{
			Addr:             ":8787",
			SessionDB:        ".stackforge/sessions.db",
			KeepSessionsDays: 30,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.CollectAll {
		cfg.CollectAll = true
	}
	if len(yamlCfg.Defaults) > 0 {
		cfg.Defaults = yamlCfg.Defaults
	}

	// The server section is merged key by key so an explicit zero survives
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["server"]; exists && section != nil {
			serverMap, _ := section.(map[string]interface{})
			if _, exists := serverMap["addr"]; exists {
				cfg.Server.Addr = yamlCfg.Server.Addr
			}
			if _, exists := serverMap["session_db"]; exists {
				cfg.Server.SessionDB = yamlCfg.Server.SessionDB
			}
			if _, exists := serverMap["keep_sessions_days"]; exists {
				cfg.Server.KeepSessionsDays = yamlCfg.Server.KeepSessionsDays
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .stackforge/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, collectAll *bool, addr *string, sessionDB *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if collectAll != nil {
		c.CollectAll = *collectAll
	}
	if addr != nil {
		c.Server.Addr = *addr
	}
	if sessionDB != nil {
		c.Server.SessionDB = *sessionDB
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	keys := make([]string, 0, len(c.Defaults))
	for k := range c.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		id, ok := stack.ParseCategoryID(k)
		if !ok {
			return fmt.Errorf("defaults: unknown category %q", k)
		}
		cat := stack.MustLookup(id)
		values := c.Defaults[k]
		if !cat.IsSet() && len(values) != 1 {
			return fmt.Errorf("defaults.%s takes exactly one value, got %d", k, len(values))
		}
		for _, v := range values {
			if !cat.InDomain(v) {
				return fmt.Errorf("defaults.%s: %q is not a valid value", k, v)
			}
		}
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Server.KeepSessionsDays < 0 {
		return fmt.Errorf("server.keep_sessions_days must be >= 0, got %d", c.Server.KeepSessionsDays)
	}

	return nil
}

// DefaultState returns the built-in default selection with the configured
// defaults applied on top. Call Validate first.
func (c *Config) DefaultState() stack.State {
	s := stack.Defaults()
	for k, values := range c.Defaults {
		id, ok := stack.ParseCategoryID(k)
		if !ok {
			continue
		}
		s[id] = stack.Normalize(id, stack.Of(values...))
	}
	return s
}
