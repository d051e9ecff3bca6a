package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codespeak-dev/codespeak/internal/language"
	"github.com/codespeak-dev/codespeak/internal/logging"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

var ErrConfigNotFound = errors.New("config not found")

// PathEnv overrides the config file location.
const PathEnv = "CODESPEAK_CONFIG"

func GetConfigPath() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "codespeak", "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile decodes path onto the defaults, so a file only needs the keys it
// changes.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run codespeak configure)", ErrConfigNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	logger := logging.For("config")
	logger.Debug("loading configuration", "path", path)

	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		names := make([]string, len(undecoded))
		for i, k := range undecoded {
			names[i] = k.String()
		}
		logger.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(names, ", "))
	}

	cfg.normalize()
	return cfg, nil
}

// LoadOrDefault is Load, falling back to the defaults when there is no file.
// The returned bool reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = DefaultConfig()
		cfg.normalize()
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func (c *Config) normalize() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Transcription.Language = language.Normalize(c.Transcription.Language)
	c.Hotkey.Source = strings.ToLower(strings.TrimSpace(c.Hotkey.Source))
	c.Notifications.Type = strings.ToLower(strings.TrimSpace(c.Notifications.Type))

	if c.Transcription.Threads == 0 && c.Transcription.Provider == transcriber.ProviderWhisperCpp {
		c.Transcription.Threads = max(runtime.NumCPU()-1, 1)
	}
}
