// Package config loads moonriver settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "moonriver"

// Config holds runtime settings. Reading preferences are not configuration;
// they live in storage.
type Config struct {
	StateDir      string        `yaml:"state_dir"`
	Backend       string        `yaml:"backend"`
	Debounce      time.Duration `yaml:"debounce"`
	RedirectDelay time.Duration `yaml:"redirect_delay"`
	LogMode       string        `yaml:"log_mode"`
	LogFile       string        `yaml:"log_file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		StateDir:      defaultStateDir(),
		Backend:       "file",
		Debounce:      500 * time.Millisecond,
		RedirectDelay: time.Second,
		LogMode:       "dev",
	}
}

// Load reads path (or the default config file when path is empty) over the
// defaults and then applies environment overrides. A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("MOONRIVER_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("MOONRIVER_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("MOONRIVER_LOG"); v != "" {
		cfg.LogMode = v
	}
	return cfg, nil
}

// LogPath returns the log file, which defaults to moonriver.log in the state
// directory.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.StateDir, appName+".log")
}

// DefaultPath returns XDG_CONFIG_HOME/moonriver/config.yaml or ~/.config/moonriver/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.yaml")
}

// defaultStateDir returns XDG_STATE_HOME/moonriver or ~/.local/state/moonriver
func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}
