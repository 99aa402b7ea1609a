package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/waxrank/waxrank/pkg/errors"
)

// Environment variables consulted during config resolution.
const (
	envToken      = "DISCOGS_TOKEN"
	envCurrency   = "WAXRANK_CURRENCY"
	envConfigPath = "WAXRANK_CONFIG"
)

// Config is the resolved runtime configuration. Values come from flags,
// the environment, and the config file, in that precedence order.
type Config struct {
	Token    string `toml:"token"`
	Currency string `toml:"currency"`
	User     string `toml:"user"`
}

// configPath returns the config file location, honoring WAXRANK_CONFIG.
func configPath() (string, error) {
	if p := os.Getenv(envConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file if it exists. A missing file is not
// an error; a file that fails to parse is.
func loadConfig() (*Config, error) {
	cfg := &Config{}

	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config file: %s", path)
	}
	return cfg, nil
}

// resolveConfig layers environment and defaults onto the file config.
// The token is required for any command that talks to the API.
func resolveConfig(requireToken bool) (*Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if token := os.Getenv(envToken); token != "" {
		cfg.Token = token
	}
	if currency := os.Getenv(envCurrency); currency != "" {
		cfg.Currency = currency
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	if requireToken && cfg.Token == "" {
		return nil, errors.New(errors.ErrCodeMissingToken,
			"no Discogs token configured: set %s or add token to the config file", envToken)
	}
	return cfg, nil
}
