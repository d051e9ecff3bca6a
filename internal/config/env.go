package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/codespeak-dev/codespeak/internal/logging"
)

// EnvFile is read from the config directory, typically to hold provider API
// keys outside the config file.
const EnvFile = ".env"

// LoadEnv sets variables from the .env file next to configPath. Variables
// already in the environment are kept. A missing file is not an error.
func LoadEnv(configPath string) error {
	path := filepath.Join(filepath.Dir(configPath), EnvFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logging.For("config").Debug("loaded environment file", "path", path)
	return nil
}
