package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/rs/zerolog/log"
)

// EnvPrefix prefixes every environment override, e.g. NODECLI_PORT.
const EnvPrefix = "NODECLI_"

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8545
	DefaultTimeout = 30 * time.Second
)

// Config holds the node connection settings.
type Config struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	Timeout time.Duration `json:"-"`
	DBPath  string        `json:"db,omitempty"`
}

// fileConfig mirrors Config with a human-readable timeout.
type fileConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Timeout string `json:"timeout,omitempty"`
	DBPath  string `json:"db,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Host: DefaultHost, Port: DefaultPort, Timeout: DefaultTimeout}
}

// DefaultPath is ~/.nodecli/config.json, or empty when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nodecli", "config.json")
}

// LoadFile overlays the JSON file at path onto cfg. A missing file leaves cfg
// untouched. Read failures are IO errors and bad content is a JSON error.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("No config file, using defaults")
			return nil
		}
		return apperr.IO(err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse config file")
		return apperr.JSON(err)
	}
	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return apperr.Customf("Invalid timeout %q in %s.", fc.Timeout, path)
		}
		cfg.Timeout = d
	}
	return nil
}

// envOverride maps one NODECLI_ variable onto a Config field.
type envOverride struct {
	key   string
	apply func(*Config, string) error
}

var envOverrides = []envOverride{
	{"HOST", func(c *Config, v string) error {
		c.Host = v
		return nil
	}},
	{"PORT", func(c *Config, v string) error {
		p, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Customf("Invalid %sPORT value %q.", EnvPrefix, v)
		}
		c.Port = p
		return nil
	}},
	{"TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.Customf("Invalid %sTIMEOUT value %q.", EnvPrefix, v)
		}
		c.Timeout = d
		return nil
	}},
	{"DB", func(c *Config, v string) error {
		c.DBPath = v
		return nil
	}},
}

// ApplyEnv overlays set NODECLI_ variables onto cfg, skipping the keys for
// which skip returns true (flags given on the command line win).
func ApplyEnv(cfg *Config, skip func(key string) bool) error {
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(EnvPrefix + o.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if skip != nil && skip(o.key) {
			continue
		}
		if err := o.apply(cfg, strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the final settings.
func (c Config) Validate() error {
	if err := validation.ValidateHost(c.Host); err != nil {
		return err
	}
	if err := validation.ValidatePort(c.Port); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return apperr.Customf("Timeout must be positive, got %s.", c.Timeout)
	}
	return nil
}

// Save writes cfg to path as indented JSON, creating the directory.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return apperr.IO(err)
	}
	data, err := json.MarshalIndent(fileConfig{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Timeout: cfg.Timeout.String(),
		DBPath:  cfg.DBPath,
	}, "", "  ")
	if err != nil {
		return apperr.JSON(err)
	}
	return apperr.IO(os.WriteFile(path, append(data, '\n'), 0o600))
}
