// Package config loads formbuilder settings from YAML, TOML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

const (
	defaultAddr     = ":8080"
	defaultLevel    = "info"
	defaultFormat   = logging.FormatConsole
	sqliteFileName  = "formbuilder.db"
	envConfigPath   = "FORMBUILDER_CONFIG"
	defaultBaseName = "formbuilder"
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type (
	Config struct {
		Store  StoreConfig  `yaml:"store" toml:"store" json:"store"`
		Server ServerConfig `yaml:"server" toml:"server" json:"server"`
		Log    LogConfig    `yaml:"log" toml:"log" json:"log"`
	}

	StoreConfig struct {
		Driver string `yaml:"driver" toml:"driver" json:"driver"`
		Path   string `yaml:"path" toml:"path" json:"path"`
		Key    string `yaml:"key" toml:"key" json:"key"`
	}

	ServerConfig struct {
		Addr string `yaml:"addr" toml:"addr" json:"addr"`
	}

	LogConfig struct {
		Level  string `yaml:"level" toml:"level" json:"level"`
		Format string `yaml:"format" toml:"format" json:"format"`
	}
)

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver: store.DriverFile,
			Path:   store.DefaultDir,
			Key:    store.DefaultKey,
		},
		Server: ServerConfig{Addr: defaultAddr},
		Log:    LogConfig{Level: defaultLevel, Format: defaultFormat},
	}
}

// Load reads path over the defaults. An empty path falls back to the
// FORMBUILDER_CONFIG environment variable, then to formbuilder.{yaml,yml,toml,json}
// in the working directory; when none exists the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = discover(".")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(filepath.Ext(path), data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode unmarshals data into cfg using the format named by ext.
func Decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return yaml.Unmarshal(data, cfg)
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Validate checks the driver and log settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverFile, store.DriverMemory, store.DriverSQLite:
	default:
		return fmt.Errorf("config: %w: %q", store.ErrUnknownDriver, c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("config: %w", store.ErrEmptyKey)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// StoreConfig returns the backend settings. A sqlite driver pointed at a
// directory stores its database inside it.
func (c Config) StoreConfig() store.Config {
	path := c.Store.Path
	if c.Store.Driver == store.DriverSQLite && filepath.Ext(path) == "" {
		path = filepath.Join(path, sqliteFileName)
	}
	return store.Config{Driver: c.Store.Driver, Path: path}
}

func (c *Config) fillDefaults() {
	def := Default()
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.Key == "" {
		c.Store.Key = def.Store.Key
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

func discover(dir string) string {
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		candidate := filepath.Join(dir, defaultBaseName+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
