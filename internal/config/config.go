// Package config provides configuration file parsing for repogc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the settings a repogc run needs. Every field can be
// overridden by a command-line flag; the file only supplies defaults.
type Config struct {
	// CheckoutRoot is the git checkout holding one directory per package.
	CheckoutRoot string `mapstructure:"checkout_root"`

	// RepoDirs are the repository output directories holding built
	// artifacts, one per architecture/repo.
	RepoDirs []string `mapstructure:"repo_dirs"`

	// Keep is the number of most recent builds retained per package name.
	Keep int `mapstructure:"keep"`

	// DBPath locates the audit database.
	DBPath string `mapstructure:"db_path"`
}

// Dir returns the repogc config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/repogc if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "repogc"), nil
}

// Load reads repogc.yaml from path, or from the config directory when path
// is empty. A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("keep", 1)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		v.SetConfigName("repogc")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if path != "" {
			// An explicitly named file must exist.
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
