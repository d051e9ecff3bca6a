package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/language"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	d := c.Dictation
	if _, err := hotkey.BuildTable(d.PushToTalkKey, d.EscapeKey); err != nil {
		return fmt.Errorf("invalid dictation keys: %w", err)
	}
	if d.KeyInterval < 0 {
		return fmt.Errorf("invalid dictation.key_interval: %v", d.KeyInterval)
	}
	if d.SettleDelay < 0 {
		return fmt.Errorf("invalid dictation.settle_delay: %v", d.SettleDelay)
	}
	for i, w := range d.DeleteKeywords.Words {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("invalid dictation.delete_keywords[%d]: empty phrase", i)
		}
	}

	if c.Hotkey.Source != hotkey.SourceEvdev && c.Hotkey.Source != hotkey.SourceSocket {
		return fmt.Errorf("invalid hotkey.source: %q (must be %s or %s)", c.Hotkey.Source, hotkey.SourceEvdev, hotkey.SourceSocket)
	}

	if err := c.ToRecordingConfig().Validate(); err != nil {
		return fmt.Errorf("invalid recording: %w", err)
	}
	if c.Recording.MinDuration < 0 {
		return fmt.Errorf("invalid recording.min_duration: %v", c.Recording.MinDuration)
	}

	if err := c.validateTranscription(); err != nil {
		return err
	}

	if len(c.Injection.Backends) == 0 {
		return fmt.Errorf("invalid injection.backends: empty")
	}
	for _, b := range c.Injection.Backends {
		if !slices.Contains(injection.ValidBackends, b) {
			return fmt.Errorf("invalid injection.backends: unknown backend %q (valid: %s)", b, strings.Join(injection.ValidBackends, ", "))
		}
	}
	if c.Injection.Timeout <= 0 {
		return fmt.Errorf("invalid injection.timeout: %v", c.Injection.Timeout)
	}

	if c.Notifications.Enabled && !slices.Contains(notify.ValidTypes, c.Notifications.Type) {
		return fmt.Errorf("invalid notifications.type: %q (valid: %s)", c.Notifications.Type, strings.Join(notify.ValidTypes, ", "))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid logging.level: %q (valid: %s)", c.Logging.Level, strings.Join(validLogLevels, ", "))
	}

	if strings.TrimSpace(c.Run.Binary) == "" {
		return fmt.Errorf("invalid run.binary: empty")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	if !slices.Contains(transcriber.ValidProviders, t.Provider) {
		return fmt.Errorf("invalid transcription.provider: %q (valid: %s)", t.Provider, strings.Join(transcriber.ValidProviders, ", "))
	}
	if !language.Valid(t.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or ISO-639-1 codes like 'en', 'es', 'fr')", t.Language)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", t.Timeout)
	}

	switch t.Provider {
	case transcriber.ProviderWhisperCpp:
		if t.ModelPath == "" {
			return fmt.Errorf("whisper-cpp requires transcription.model_path")
		}
		if t.Threads < 0 {
			return fmt.Errorf("invalid transcription.threads: %d", t.Threads)
		}
	default:
		if c.resolveAPIKey() == "" {
			env := transcriber.APIKeyEnv(t.Provider)
			return fmt.Errorf("%s API key required: set transcription.api_key or %s", t.Provider, env)
		}
	}
	return nil
}

// resolveAPIKey prefers the configured key over the provider's environment
// variable.
func (c *Config) resolveAPIKey() string {
	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}
	if env := transcriber.APIKeyEnv(c.Transcription.Provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}
