package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/repogc/internal/config"
	"github.com/blackwell-systems/repogc/internal/recipe"
)

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveCheckoutRoot picks the checkout root from the --repo flag or config.
func resolveCheckoutRoot(cfg *config.Config) (string, error) {
	if flagRepo != "" {
		return flagRepo, nil
	}
	if cfg.CheckoutRoot != "" {
		return cfg.CheckoutRoot, nil
	}
	return "", fmt.Errorf("no checkout root configured (use --repo or set checkout_root in the config)")
}

// resolveRepoDirs picks the artifact directories from args or config.
func resolveRepoDirs(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.RepoDirs) > 0 {
		return cfg.RepoDirs, nil
	}
	return nil, fmt.Errorf("no repository directories given (pass them as arguments or set repo_dirs in the config)")
}

// resolveDBPath picks the audit database path from the --db flag, config, or
// the default under the user's home directory.
func resolveDBPath(cfg *config.Config) (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".repogc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create repogc directory: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// buildRegistry scans the checkout recipes and folds in the operator's
// protected names.
func buildRegistry(root string) (*recipe.Registry, error) {
	reg, err := recipe.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to build package name registry: %w", err)
	}

	confDir, err := config.Dir()
	if err != nil {
		return reg, nil
	}
	protected, err := config.LoadProtected(confDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load protected names: %w", err)
	}
	for _, name := range protected {
		reg.Add(name)
	}
	return reg, nil
}
