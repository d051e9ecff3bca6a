// Package models manages the ggml model files used by the whisper-cpp
// transcription provider.
package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Model describes one downloadable whisper.cpp model.
type Model struct {
	ID           string
	Name         string
	File         string
	Size         int64
	Multilingual bool
}

// SizeLabel formats the approximate download size, e.g. "142 MB".
func (m Model) SizeLabel() string {
	const mb = 1_000_000
	if m.Size >= 1000*mb {
		return fmt.Sprintf("%.1f GB", float64(m.Size)/(1000*mb))
	}
	return fmt.Sprintf("%d MB", m.Size/mb)
}

var catalog = []Model{
	{ID: "tiny.en", Name: "Tiny (English)", File: "ggml-tiny.en.bin", Size: 75_000_000},
	{ID: "base.en", Name: "Base (English)", File: "ggml-base.en.bin", Size: 142_000_000},
	{ID: "small.en", Name: "Small (English)", File: "ggml-small.en.bin", Size: 466_000_000},
	{ID: "medium.en", Name: "Medium (English)", File: "ggml-medium.en.bin", Size: 1_500_000_000},
	{ID: "tiny", Name: "Tiny", File: "ggml-tiny.bin", Size: 75_000_000, Multilingual: true},
	{ID: "base", Name: "Base", File: "ggml-base.bin", Size: 142_000_000, Multilingual: true},
	{ID: "small", Name: "Small", File: "ggml-small.bin", Size: 466_000_000, Multilingual: true},
	{ID: "medium", Name: "Medium", File: "ggml-medium.bin", Size: 1_500_000_000, Multilingual: true},
	{ID: "large-v3", Name: "Large v3", File: "ggml-large-v3.bin", Size: 3_000_000_000, Multilingual: true},
	{ID: "large-v3-turbo", Name: "Large v3 Turbo", File: "ggml-large-v3-turbo.bin", Size: 1_600_000_000, Multilingual: true},
}

var byID = func() map[string]Model {
	m := make(map[string]Model, len(catalog))
	for _, model := range catalog {
		m[model.ID] = model
	}
	return m
}()

// All returns the catalog, smallest English models first.
func All() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id string) (Model, bool) {
	m, ok := byID[id]
	return m, ok
}

// DirEnv overrides where models are stored.
const DirEnv = "CODESPEAK_MODELS_DIR"

// DefaultDir is $CODESPEAK_MODELS_DIR, else $XDG_DATA_HOME/codespeak/models,
// else ~/.local/share/codespeak/models.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "codespeak", "models"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate models directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "codespeak", "models"), nil
}
