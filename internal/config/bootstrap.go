package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
)

//go:embed default.yml
var defaultYAML []byte

// EnsureUserConfig writes the shipped default config into dataDir unless one already exists,
// and returns the user config path.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, defaultYAML, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
