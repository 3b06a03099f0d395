package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: PAGEUTIL_SERVER__PORT -> server.port.
const EnvPrefix = "PAGEUTIL_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PAGEUTIL_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "accessing config %s", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing config to %s", path)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Lang == "" {
		return errors.New("lang is required")
	}
	if strings.ContainsAny(c.Lang, `/\`) {
		return errors.Errorf("invalid lang %q", c.Lang)
	}

	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	if c.Site.Theme == "" {
		return errors.New("site.theme is required")
	}
	if c.Site.ThemeRev < 0 {
		return errors.New("site.themerev must be non-negative")
	}

	return nil
}

// DBPath returns the sqlite database location inside the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "pageutil.db")
}
