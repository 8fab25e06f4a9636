// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Service ServiceConfig `toml:"service"`
	History HistoryConfig `toml:"history"`
	Drill   DrillConfig   `toml:"drill"`
	Log     LogConfig     `toml:"log"`
}

// ServiceConfig maps prediction service settings.
type ServiceConfig struct {
	Endpoint *string `toml:"endpoint"`
	Timeout  *string `toml:"timeout"`
}

// HistoryConfig maps prediction history settings.
type HistoryConfig struct {
	Enabled *bool `toml:"enabled"`
}

// DrillConfig maps drill prompt settings.
type DrillConfig struct {
	Enabled    *bool    `toml:"enabled"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// TimeoutDuration parses the service timeout. A nil value yields ok=false.
func (c ServiceConfig) TimeoutDuration() (d time.Duration, ok bool, err error) {
	if c.Timeout == nil {
		return 0, false, nil
	}
	d, err = time.ParseDuration(*c.Timeout)
	if err != nil {
		return 0, false, fmt.Errorf("invalid service.timeout %q: %w", *c.Timeout, err)
	}
	return d, true, nil
}

func (c FileConfig) validate() error {
	if _, _, err := c.Service.TimeoutDuration(); err != nil {
		return err
	}
	if c.Log.Level != nil {
		if _, err := ParseLevel(*c.Log.Level); err != nil {
			return err
		}
	}
	return nil
}
