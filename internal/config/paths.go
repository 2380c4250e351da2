package config

import (
	"fmt"
	"path/filepath"

	gap "github.com/muesli/go-app-paths"
)

// DataPath returns the data path for the application.
func DataPath() (string, error) {
	scope := gap.NewScope(gap.User, appName)
	dataDir, err := scope.DataPath("")
	if err != nil {
		return "", fmt.Errorf("getting data path: %w", err)
	}

	return dataDir, nil
}

// ConfigPath returns the config path for the application.
func ConfigPath() (string, error) {
	scope := gap.NewScope(gap.User, appName)
	configDir, err := scope.ConfigPath("")
	if err != nil {
		return "", fmt.Errorf("getting config path: %w", err)
	}

	return configDir, nil
}

// DefaultConfigFile returns the path of the config file.
func DefaultConfigFile() (string, error) {
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}

	return filepath.Join(p, DefaultFilename), nil
}

// defaultDBPath returns the database path in the data directory, or the
// working directory when it cannot be resolved.
func defaultDBPath() string {
	p, err := DataPath()
	if err != nil {
		return MainDBName
	}

	return filepath.Join(p, MainDBName)
}
