// Package config handles configuration loading for the harness.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/viper"
)

// Config holds all harness configuration.
type Config struct {
	// Manifest is the default manifest path.
	Manifest string `mapstructure:"manifest"`
	// OutputDir is the root for clones, results, and the run log.
	OutputDir string `mapstructure:"output_dir"`
	// AgnixBin is the agnix binary path or name resolved via PATH.
	AgnixBin string `mapstructure:"agnix_bin"`
	// Parallel is the worker count.
	Parallel int `mapstructure:"parallel"`
	// Timeout bounds one agnix invocation.
	Timeout time.Duration `mapstructure:"timeout"`
	// ExtraArgs holds additional agnix arguments as a shell-quoted string.
	ExtraArgs string `mapstructure:"extra_args"`
}

// ExtraArgList splits ExtraArgs with shell quoting rules.
func (c *Config) ExtraArgList() ([]string, error) {
	if c.ExtraArgs == "" {
		return nil, nil
	}
	args, err := shellquote.Split(c.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("parse extra_args: %w", err)
	}
	return args, nil
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (AGNIX_BIN)
// 2. Project config (.agnix-harness.yaml in current directory or parent)
// 3. User config (~/.config/agnix-harness/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("agnix_bin", "AGNIX_BIN")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("manifest", "repos.yaml")
	v.SetDefault("output_dir", "validation-output")
	v.SetDefault("agnix_bin", "agnix")
	v.SetDefault("parallel", 4)
	v.SetDefault("timeout", "120s")
	v.SetDefault("extra_args", "")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Manifest:  "repos.yaml",
		OutputDir: "validation-output",
		AgnixBin:  "agnix",
		Parallel:  4,
		Timeout:   120 * time.Second,
		ExtraArgs: "",
	}
}

// getUserConfigDir returns the XDG config directory for the harness.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agnix-harness")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agnix-harness")
	}
	return filepath.Join(home, ".config", "agnix-harness")
}

// findProjectConfig searches for .agnix-harness.yaml in the current
// directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agnix-harness.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
