package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the default locations.
const (
	EnvConfigPath = "TGCHECK_CONFIG_PATH"
	EnvHome       = "TGCHECK_HOME"
)

// Defaults holds the default application paths.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TGCHECK_CONFIG_PATH: config file location (default: ~/.config/tgcheck.toml)
//   - TGCHECK_HOME: base directory for sessions, proxies and logs (default: ~/.local/share/tgcheck)
func GetDefaults() (*Defaults, error) {
	configPath, err := envOrHome(EnvConfigPath, ".config", "tgcheck.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome(EnvHome, ".local", "share", "tgcheck")
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of env, or the path under the home directory
// built from elem when env is unset.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
