package config

import (
	"fmt"
	"slices"
	"time"
)

type Config struct {
	Dictation     DictationConfig     `toml:"dictation" yaml:"dictation"`
	Hotkey        HotkeyConfig        `toml:"hotkey" yaml:"hotkey"`
	Recording     RecordingConfig     `toml:"recording" yaml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription" yaml:"transcription"`
	Injection     InjectionConfig     `toml:"injection" yaml:"injection"`
	Notifications NotificationsConfig `toml:"notifications" yaml:"notifications"`
	Logging       LoggingConfig       `toml:"logging" yaml:"logging"`
	Run           RunConfig           `toml:"run" yaml:"run"`
}

type DictationConfig struct {
	PushToTalkKey      string        `toml:"push_to_talk_key" yaml:"push_to_talk_key"`
	EscapeKey          string        `toml:"escape_key" yaml:"escape_key"`
	RecordingIndicator string        `toml:"recording_indicator" yaml:"recording_indicator"`
	DeleteKeywords     Keywords      `toml:"delete_keywords" yaml:"delete_keywords"`
	StripWhitespace    bool          `toml:"strip_whitespace" yaml:"strip_whitespace"`
	FastDelete         bool          `toml:"fast_delete" yaml:"fast_delete"`
	KeyInterval        time.Duration `toml:"key_interval" yaml:"key_interval"`
	SettleDelay        time.Duration `toml:"settle_delay" yaml:"settle_delay"`
}

type HotkeyConfig struct {
	Source  string   `toml:"source" yaml:"source"`
	Devices []string `toml:"devices" yaml:"devices"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate" yaml:"sample_rate"`
	Channels          int           `toml:"channels" yaml:"channels"`
	Format            string        `toml:"format" yaml:"format"`
	BufferSize        int           `toml:"buffer_size" yaml:"buffer_size"`
	Device            string        `toml:"device" yaml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size" yaml:"channel_buffer_size"`
	MinDuration       time.Duration `toml:"min_duration" yaml:"min_duration"`
}

type TranscriptionConfig struct {
	Provider  string        `toml:"provider" yaml:"provider"`
	APIKey    string        `toml:"api_key" yaml:"api_key,omitempty"`
	Language  string        `toml:"language" yaml:"language"`
	Model     string        `toml:"model" yaml:"model"`
	ModelPath string        `toml:"model_path" yaml:"model_path"`
	Threads   int           `toml:"threads" yaml:"threads"`
	Timeout   time.Duration `toml:"timeout" yaml:"timeout"`
}

type InjectionConfig struct {
	Backends []string      `toml:"backends" yaml:"backends"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Type    string `toml:"type" yaml:"type"`
}

type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	TimeFormat string `toml:"time_format" yaml:"time_format"`
	ShowCaller bool   `toml:"show_caller" yaml:"show_caller"`
}

// RunConfig configures `codespeak run`, which wraps another program in a
// dictation session.
type RunConfig struct {
	Binary string `toml:"binary" yaml:"binary"`
}

// Keywords is the delete_keywords setting. It is either a list of phrases or
// a boolean: false turns delete commands off, true keeps the default phrases.
type Keywords struct {
	Disabled bool
	Words    []string
}

func DefaultKeywords() []string {
	return []string{"delete", "delete last", "delete last input"}
}

// Enabled reports whether any phrase can trigger a delete.
func (k Keywords) Enabled() bool {
	return !k.Disabled && len(k.Words) > 0
}

func (k *Keywords) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case bool:
		k.Disabled = !v
		k.Words = nil
		if v {
			k.Words = DefaultKeywords()
		}
	case []any:
		words := make([]string, 0, len(v))
		for i, w := range v {
			s, ok := w.(string)
			if !ok {
				return fmt.Errorf("delete_keywords[%d]: expected string, got %T", i, w)
			}
			words = append(words, s)
		}
		k.Disabled = false
		k.Words = words
	default:
		return fmt.Errorf("delete_keywords: expected a list of strings or a boolean, got %T", v)
	}
	return nil
}

func (k Keywords) MarshalYAML() (any, error) {
	if k.Disabled {
		return false, nil
	}
	return k.Words, nil
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Dictation.DeleteKeywords.Words = slices.Clone(c.Dictation.DeleteKeywords.Words)
	out.Hotkey.Devices = slices.Clone(c.Hotkey.Devices)
	out.Injection.Backends = slices.Clone(c.Injection.Backends)
	return &out
}
